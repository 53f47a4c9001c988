package store

import (
	"context"
	"strings"

	"carcatalog/content/internal/domain"
	"carcatalog/content/internal/normalize"
)

// GetAllBrands returns the cached tree, loading it on first access.
// There is no expiry; only Refresh replaces a loaded tree.
func (s *Store) GetAllBrands(ctx context.Context) []*domain.Brand {
	defer s.track()()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil
	}
	return s.snapshot()
}

// GetBrandByID looks a brand up by identifier and selects it
func (s *Store) GetBrandByID(ctx context.Context, id string) *domain.Brand {
	defer s.track()()
	_ = s.ensureLoaded(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	brand := s.findBrandByID(id)
	s.selectedBrand = brand
	return brand
}

// GetBrandBySlug looks a brand up by slug and selects it
func (s *Store) GetBrandBySlug(ctx context.Context, slug string) *domain.Brand {
	defer s.track()()
	_ = s.ensureLoaded(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	brand := s.findBrandBySlug(slug)
	s.selectedBrand = brand
	return brand
}

// GetModelsByBrandID returns the models of a brand, empty when the brand is
// unknown
func (s *Store) GetModelsByBrandID(ctx context.Context, id string) []*domain.Model {
	defer s.track()()
	_ = s.ensureLoaded(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	brand := s.findBrandByID(id)
	if brand == nil {
		return []*domain.Model{}
	}
	return append([]*domain.Model{}, brand.Models...)
}

// GetModelByID looks a model up within a brand. On success both selection
// cursors point at the match.
func (s *Store) GetModelByID(ctx context.Context, brandID, modelID string) *domain.Model {
	defer s.track()()
	_ = s.ensureLoaded(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	brand := s.findBrandByID(brandID)
	if brand == nil {
		return nil
	}

	var model *domain.Model
	for _, m := range brand.Models {
		if m.ID == modelID {
			model = m
			break
		}
	}
	s.selectModel(brand, model)
	return model
}

// GetModelBySlug looks a model up by brand and model slug. On success both
// selection cursors point at the match.
func (s *Store) GetModelBySlug(ctx context.Context, brandSlug, modelSlug string) *domain.Model {
	defer s.track()()
	_ = s.ensureLoaded(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	brand := s.findBrandBySlug(brandSlug)
	if brand == nil {
		return nil
	}

	model := findModelBySlug(brand, modelSlug)
	s.selectModel(brand, model)
	return model
}

// GetModelImages returns the gallery of a cached model. It never loads: an
// uncached model yields an empty gallery. A model without a gallery gets a
// single image built from its primary image.
func (s *Store) GetModelImages(brandSlug, modelSlug string) []domain.Image {
	defer s.track()()

	s.mu.RLock()
	defer s.mu.RUnlock()

	brand := s.findBrandBySlug(brandSlug)
	if brand == nil {
		return []domain.Image{}
	}
	model := findModelBySlug(brand, modelSlug)
	if model == nil {
		return []domain.Image{}
	}

	if len(model.Images) > 0 {
		return append([]domain.Image{}, model.Images...)
	}
	return normalize.BuildGallery(model.ImageURL, model.Name, nil)
}

// selectModel sets the model cursor and, on a hit, the brand cursor.
// Caller holds s.mu.
func (s *Store) selectModel(brand *domain.Brand, model *domain.Model) {
	s.selectedModel = model
	if model != nil {
		s.selectedBrand = brand
	}
}

func (s *Store) findBrandByID(id string) *domain.Brand {
	for _, b := range s.brands {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (s *Store) findBrandBySlug(slug string) *domain.Brand {
	for _, b := range s.brands {
		if b.Slug == slug {
			return b
		}
	}
	return nil
}

func (s *Store) brandIndex(id string) int {
	for i, b := range s.brands {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func findModelBySlug(brand *domain.Brand, slug string) *domain.Model {
	for _, m := range brand.Models {
		if m.Slug == slug {
			return m
		}
	}
	return nil
}

func splitModelPath(path string) (brandSlug, modelSlug string) {
	brandSlug, modelSlug, _ = strings.Cut(path, "/")
	return brandSlug, modelSlug
}
