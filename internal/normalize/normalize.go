// Package normalize classifies content entries and turns them into catalog
// records. Everything here is pure: no I/O, no shared state.
package normalize

import (
	"path"
	"strconv"
	"strings"

	"carcatalog/content/internal/domain"
)

const protocolRelativePrefix = "//"

// ClassifyBrandRoots keeps the folder start pages under rootPrefix, dropping
// the catalog root index and any loose entry swept in by the prefix match.
func ClassifyBrandRoots(entries []domain.Entry, rootPrefix string) []domain.Entry {
	root := strings.Trim(rootPrefix, "/")
	rootName := path.Base(root)

	roots := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		if !e.IsStartPage {
			continue
		}
		if e.Slug == rootName || strings.Trim(e.FullSlug, "/") == root {
			continue
		}
		roots = append(roots, e)
	}
	return roots
}

// BrandSlug returns the folder name of a brand start page, e.g. "toyota" for
// "brands/toyota/". Entries outside rootPrefix fall back to their own slug.
func BrandSlug(e domain.Entry, rootPrefix string) string {
	rest, ok := strings.CutPrefix(strings.Trim(e.FullSlug, "/")+"/", strings.Trim(rootPrefix, "/")+"/")
	if !ok {
		return e.Slug
	}
	if folder, _, _ := strings.Cut(rest, "/"); folder != "" {
		return folder
	}
	return e.Slug
}

// ExcludeOwnIndex drops the brand's own folder index from a listing of the
// brand folder. ownPath is the brand folder path, e.g. "brands/toyota".
// Matching is exact on slug or full slug; similarly named models are kept.
func ExcludeOwnIndex(entries []domain.Entry, ownPath string) []domain.Entry {
	own := strings.Trim(ownPath, "/")
	ownSlug := path.Base(own)

	models := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Slug == ownSlug || strings.Trim(e.FullSlug, "/") == own {
			continue
		}
		models = append(models, e)
	}
	return models
}

// NormalizeURL rewrites protocol-relative URLs to https. An empty string
// stands for a missing URL and is returned as is.
func NormalizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, protocolRelativePrefix) {
		return "https:" + raw
	}
	return raw
}

// ExtractYear keeps the leading token of a date-like value ("2023-05-10 00:00"
// becomes "2023-05-10"). The result is not validated.
func ExtractYear(raw string) string {
	if before, _, found := strings.Cut(raw, " "); found {
		return before
	}
	return raw
}

// NormalizeAssets returns a copy of assets with every filename normalized
func NormalizeAssets(assets []domain.Asset) []domain.Asset {
	out := make([]domain.Asset, 0, len(assets))
	for _, a := range assets {
		out = append(out, domain.Asset{Filename: NormalizeURL(a.Filename), Alt: a.Alt})
	}
	return out
}

// BuildGallery merges the primary image and the auxiliary collection into an
// ordered gallery with no repeated URL. The primary image, when present, is
// always first.
func BuildGallery(primaryURL, label string, aux []domain.Asset) []domain.Image {
	gallery := make([]domain.Image, 0, len(aux)+1)
	seen := make(map[string]struct{}, len(aux)+1)

	if u := NormalizeURL(primaryURL); u != "" {
		gallery = append(gallery, domain.Image{URL: u, Alt: label + " main image"})
		seen[u] = struct{}{}
	}

	for _, a := range aux {
		u := NormalizeURL(a.Filename)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}

		alt := a.Alt
		if alt == "" {
			alt = label + " gallery image"
		}
		gallery = append(gallery, domain.Image{URL: u, Alt: alt})
		seen[u] = struct{}{}
	}

	return gallery
}

// ToBrand builds a brand shell (no models) from its start page
func ToBrand(e domain.Entry) domain.Brand {
	c := e.Content.Brand()

	name := c.Name
	if name == "" {
		name = e.Name
	}

	country := c.Country
	if country == "" {
		country = domain.UnknownCountry
	}

	return domain.Brand{
		ID:          entryID(e),
		Name:        name,
		Slug:        e.Slug,
		ImageURL:    NormalizeURL(c.Photo.Filename),
		Country:     country,
		Description: c.Description,
		Models:      []*domain.Model{},
	}
}

// ToModel builds a full model record, gallery included
func ToModel(brandSlug string, e domain.Entry) domain.Model {
	m := ToModelSummary(brandSlug, e)
	c := e.Content.Model()

	m.PDF = c.PDF.Href()
	m.Specifications = c.Specifications
	m.Features = c.Features
	m.Fotos = NormalizeAssets(c.Fotos)
	m.Images = BuildGallery(m.ImageURL, m.Name, m.Fotos)
	m.PublishedAt = e.PublishedAt
	return m
}

// ToModelSummary builds a lightweight model record: primary image only
func ToModelSummary(brandSlug string, e domain.Entry) domain.Model {
	c := e.Content.Model()

	name := c.ModelName
	if name == "" {
		name = e.Name
	}

	return domain.Model{
		ID:          entryID(e),
		UUID:        e.UUID,
		Name:        name,
		Slug:        e.Slug,
		Path:        ModelPath(brandSlug, e.Slug),
		FullSlug:    e.FullSlug,
		ImageURL:    NormalizeURL(c.Foto.Filename),
		Year:        ExtractYear(c.Year),
		Description: c.Description,
		Price:       c.Price,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ModelPath joins brand and model slugs into the hierarchical model path
func ModelPath(brandSlug, modelSlug string) string {
	return brandSlug + "/" + modelSlug
}

func entryID(e domain.Entry) string {
	if e.ID != 0 {
		return strconv.FormatInt(e.ID, 10)
	}
	return e.UUID
}
