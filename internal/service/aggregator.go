package service

import (
	"context"
	"fmt"

	"carcatalog/content/internal/client"
	"carcatalog/content/internal/domain"
	"carcatalog/content/internal/normalize"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Aggregator assembles the brand/model tree from the content API.
// It holds no mutable state; every call starts from scratch.
type Aggregator struct {
	client     client.StoryblokClient
	rootPrefix string
	maxWorkers int
}

func NewAggregator(client client.StoryblokClient, rootPrefix string, maxWorkers int) *Aggregator {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Aggregator{
		client:     client,
		rootPrefix: rootPrefix,
		maxWorkers: maxWorkers,
	}
}

// ListAllBrands fetches every brand with its models. A brand whose detail or
// model listing fails is logged and left out; only a failure of the root
// listing or the end of ctx is returned. Brands keep the order of the root
// listing.
func (a *Aggregator) ListAllBrands(ctx context.Context) ([]*domain.Brand, error) {
	root, err := a.client.List(ctx, a.rootPrefix, domain.ListOptions{
		ExcludingSlugs: a.rootPrefix + "*/[^/]*",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list brand folders: %w", err)
	}

	slugs := a.uniqueSlugs(normalize.ClassifyBrandRoots(root.Stories, a.rootPrefix))
	log.Infof("🔄 Found %d brands under %s", len(slugs), a.rootPrefix)

	results := make([]*domain.Brand, len(slugs))

	g := new(errgroup.Group)
	g.SetLimit(a.maxWorkers)

	for i, slug := range slugs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			brand, err := a.fetchBrand(ctx, slug)
			if err != nil {
				if ctx.Err() == nil {
					log.Errorf("❌ Failed to fetch brand %s: %v", slug, err)
				}
				return nil
			}
			results[i] = brand
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// A cancelled pass never yields a partial catalog
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("brand listing interrupted: %w", err)
	}

	brands := make([]*domain.Brand, 0, len(results))
	models := 0
	for _, brand := range results {
		if brand == nil {
			continue
		}
		brands = append(brands, brand)
		models += len(brand.Models)
	}

	log.Infof("✅ Loaded %d of %d brands with %d models", len(brands), len(slugs), models)
	return brands, nil
}

// GetBrandDetails lists the stories under the root prefix tagged with the
// brand slug. The envelope is returned as is.
func (a *Aggregator) GetBrandDetails(ctx context.Context, brandSlug string) (*domain.StoryList, error) {
	list, err := a.client.List(ctx, a.rootPrefix, domain.ListOptions{WithTag: brandSlug})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch details for brand %s: %w", brandSlug, err)
	}
	return list, nil
}

// GetModelDetails fetches a single model with its gallery and structured fields
func (a *Aggregator) GetModelDetails(ctx context.Context, brandSlug, modelSlug string) (*domain.Model, error) {
	env, err := a.client.GetByPath(ctx, a.modelPath(brandSlug, modelSlug), domain.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch model %s/%s: %w", brandSlug, modelSlug, err)
	}

	model := normalize.ToModel(brandSlug, env.Story)
	return &model, nil
}

// ListModelsByBrand returns the lightweight model records of a brand
func (a *Aggregator) ListModelsByBrand(ctx context.Context, brandSlug string) ([]*domain.Model, error) {
	entries, err := a.listModelEntries(ctx, brandSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch models for brand %s: %w", brandSlug, err)
	}

	models := make([]*domain.Model, 0, len(entries))
	for _, e := range entries {
		m := normalize.ToModelSummary(brandSlug, e)
		models = append(models, &m)
	}
	return models, nil
}

// fetchBrand runs the brand detail fetch and the model listing concurrently
func (a *Aggregator) fetchBrand(ctx context.Context, slug string) (*domain.Brand, error) {
	var (
		detail  *domain.StoryEnvelope
		entries []domain.Entry
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		env, err := a.client.GetByPath(gctx, a.brandPath(slug), domain.GetOptions{})
		if err != nil {
			return fmt.Errorf("brand detail: %w", err)
		}
		detail = env
		return nil
	})

	g.Go(func() error {
		list, err := a.listModelEntries(gctx, slug)
		if err != nil {
			return fmt.Errorf("model listing: %w", err)
		}
		entries = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	brand := normalize.ToBrand(detail.Story)
	brand.Slug = slug

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Slug]; dup {
			log.Warnf("⚠️ Duplicate model slug %s in brand %s, keeping the first one", e.Slug, slug)
			continue
		}
		seen[e.Slug] = struct{}{}

		m := normalize.ToModel(brand.Slug, e)
		brand.Models = append(brand.Models, &m)
	}

	log.Debugf("Fetched brand %s with %d models", slug, len(brand.Models))
	return &brand, nil
}

// listModelEntries lists a brand folder without the brand's own index
func (a *Aggregator) listModelEntries(ctx context.Context, brandSlug string) ([]domain.Entry, error) {
	list, err := a.client.List(ctx, a.brandPath(brandSlug)+"/", domain.ListOptions{
		ExcludingSlugs: a.brandPath(brandSlug) + "/index",
	})
	if err != nil {
		return nil, err
	}
	return normalize.ExcludeOwnIndex(list.Stories, a.brandPath(brandSlug)), nil
}

func (a *Aggregator) brandPath(brandSlug string) string {
	return a.rootPrefix + brandSlug
}

func (a *Aggregator) modelPath(brandSlug, modelSlug string) string {
	return a.brandPath(brandSlug) + "/" + modelSlug
}

func (a *Aggregator) uniqueSlugs(entries []domain.Entry) []string {
	slugs := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		slug := normalize.BrandSlug(e, a.rootPrefix)
		if slug == "" {
			continue
		}
		if _, dup := seen[slug]; dup {
			log.Warnf("⚠️ Duplicate brand slug %s in root listing, keeping the first one", slug)
			continue
		}
		seen[slug] = struct{}{}
		slugs = append(slugs, slug)
	}
	return slugs
}
