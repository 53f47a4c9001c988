package store

import (
	"fmt"

	"carcatalog/content/internal/domain"
	"carcatalog/content/internal/normalize"

	log "github.com/sirupsen/logrus"
)

// The mutations below are provisional: they change the in-memory tree only,
// are never sent to the content API, and are lost on the next refresh.

// BrandUpdate lists the brand fields to overwrite; nil fields are kept
type BrandUpdate struct {
	Name        *string
	Slug        *string
	ImageURL    *string
	Country     *string
	Description *string
}

// AddBrand appends a brand under a fresh provisional identifier
func (s *Store) AddBrand(input domain.Brand) *domain.Brand {
	defer s.track()()

	s.mu.Lock()
	defer s.mu.Unlock()

	if input.Slug == "" {
		s.lastErr = fmt.Errorf("add brand %q: %w", input.Name, ErrInvalidSlug)
		return nil
	}
	if s.findBrandBySlug(input.Slug) != nil {
		s.lastErr = fmt.Errorf("add brand %q: %w", input.Slug, ErrDuplicateSlug)
		return nil
	}

	brand := input
	brand.ID = s.nextID()
	brand.ImageURL = normalize.NormalizeURL(brand.ImageURL)
	if brand.Country == "" {
		brand.Country = domain.UnknownCountry
	}

	models := make([]*domain.Model, 0, len(input.Models))
	seen := make(map[string]struct{}, len(input.Models))
	for _, m := range input.Models {
		if m == nil {
			continue
		}
		if m.Slug == "" {
			s.lastErr = fmt.Errorf("add brand %q: model %q: %w", input.Slug, m.Name, ErrInvalidSlug)
			return nil
		}
		if _, dup := seen[m.Slug]; dup {
			s.lastErr = fmt.Errorf("add brand %q: model %q: %w", input.Slug, m.Slug, ErrDuplicateSlug)
			return nil
		}
		seen[m.Slug] = struct{}{}
		models = append(models, s.provisionalModel(brand.Slug, *m))
	}
	brand.Models = models

	s.brands = append(s.brands, &brand)
	log.Debugf("Added provisional brand %s (%s)", brand.Slug, brand.ID)
	return &brand
}

// AddModelToBrand appends a model to a brand under a fresh provisional
// identifier
func (s *Store) AddModelToBrand(brandID string, input domain.Model) *domain.Model {
	defer s.track()()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.brandIndex(brandID)
	if i < 0 {
		s.lastErr = fmt.Errorf("add model to brand %s: %w", brandID, ErrBrandNotFound)
		return nil
	}

	current := s.brands[i]
	if input.Slug == "" {
		s.lastErr = fmt.Errorf("add model %q to brand %s: %w", input.Name, current.Slug, ErrInvalidSlug)
		return nil
	}
	if findModelBySlug(current, input.Slug) != nil {
		s.lastErr = fmt.Errorf("add model %q to brand %s: %w", input.Slug, current.Slug, ErrDuplicateSlug)
		return nil
	}

	model := s.provisionalModel(current.Slug, input)

	updated := *current
	updated.Models = append(append([]*domain.Model{}, current.Models...), model)
	s.replaceBrand(i, &updated)

	log.Debugf("Added provisional model %s to brand %s", model.Path, current.Slug)
	return model
}

// UpdateBrand overwrites the given fields of a brand
func (s *Store) UpdateBrand(brandID string, update BrandUpdate) *domain.Brand {
	defer s.track()()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.brandIndex(brandID)
	if i < 0 {
		s.lastErr = fmt.Errorf("update brand %s: %w", brandID, ErrBrandNotFound)
		return nil
	}

	if update.Slug != nil && *update.Slug == "" {
		s.lastErr = fmt.Errorf("update brand %s: %w", brandID, ErrInvalidSlug)
		return nil
	}

	current := s.brands[i]
	updated := *current

	if update.Slug != nil && *update.Slug != current.Slug {
		if s.findBrandBySlug(*update.Slug) != nil {
			s.lastErr = fmt.Errorf("update brand %s slug to %q: %w", brandID, *update.Slug, ErrDuplicateSlug)
			return nil
		}
		updated.Slug = *update.Slug
		updated.Models = make([]*domain.Model, 0, len(current.Models))
		for _, m := range current.Models {
			moved := *m
			moved.Path = normalize.ModelPath(updated.Slug, m.Slug)
			updated.Models = append(updated.Models, &moved)
		}
	}
	if update.Name != nil {
		updated.Name = *update.Name
	}
	if update.ImageURL != nil {
		updated.ImageURL = normalize.NormalizeURL(*update.ImageURL)
	}
	if update.Country != nil {
		updated.Country = *update.Country
	}
	if update.Description != nil {
		updated.Description = *update.Description
	}

	s.replaceBrand(i, &updated)
	return &updated
}

// DeleteBrand removes a brand. The selection cursors are left untouched.
func (s *Store) DeleteBrand(brandID string) bool {
	defer s.track()()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.brandIndex(brandID)
	if i < 0 {
		s.lastErr = fmt.Errorf("delete brand %s: %w", brandID, ErrBrandNotFound)
		return false
	}

	brands := make([]*domain.Brand, 0, len(s.brands)-1)
	brands = append(brands, s.brands[:i]...)
	s.brands = append(brands, s.brands[i+1:]...)
	return true
}

// replaceBrand swaps in a new copy of a brand so that readers holding the
// old pointer keep a consistent record. Caller holds s.mu.
func (s *Store) replaceBrand(i int, updated *domain.Brand) {
	old := s.brands[i]

	brands := append([]*domain.Brand{}, s.brands...)
	brands[i] = updated
	s.brands = brands

	if s.selectedBrand == old {
		s.selectedBrand = updated
	}
	if s.selectedModel != nil {
		for j, m := range old.Models {
			if m == s.selectedModel && j < len(updated.Models) {
				s.selectedModel = updated.Models[j]
				break
			}
		}
	}
}

// provisionalModel normalizes a locally created model. Caller holds s.mu.
func (s *Store) provisionalModel(brandSlug string, input domain.Model) *domain.Model {
	m := input
	m.ID = s.nextID()
	m.Path = normalize.ModelPath(brandSlug, m.Slug)
	m.ImageURL = normalize.NormalizeURL(m.ImageURL)
	m.Year = normalize.ExtractYear(m.Year)
	m.Fotos = normalize.NormalizeAssets(input.Fotos)

	aux := make([]domain.Asset, 0, len(input.Images)+len(input.Fotos))
	for _, img := range input.Images {
		aux = append(aux, domain.Asset{Filename: img.URL, Alt: img.Alt})
	}
	aux = append(aux, m.Fotos...)
	m.Images = normalize.BuildGallery(m.ImageURL, m.Name, aux)

	return &m
}
