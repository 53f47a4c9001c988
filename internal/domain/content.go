package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Content holds the loosely-typed `content` mapping of a story. The raw
// mapping is always kept; recognized fields are read through the total
// accessors below, which never fail on an unexpected shape.
type Content struct {
	Raw map[string]any
}

// UnmarshalJSON keeps any object as the raw mapping. Anything that is not an
// object (null, string, array) decodes to an empty mapping.
func (c *Content) UnmarshalJSON(data []byte) error {
	c.Raw = nil

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil
	}
	c.Raw = raw
	return nil
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.Raw == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.Raw)
}

// Has reports whether the key is present with a non-null value
func (c Content) Has(key string) bool {
	v, ok := c.Raw[key]
	return ok && v != nil
}

// String reads a scalar field. Numbers and booleans are formatted, anything
// else yields "".
func (c Content) String(key string) string {
	return scalarString(c.Raw[key])
}

// Object reads a mapping field, defaulting to an empty mapping
func (c Content) Object(key string) map[string]any {
	if m, ok := c.Raw[key].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// List reads a sequence field, defaulting to an empty sequence
func (c Content) List(key string) []any {
	if l, ok := c.Raw[key].([]any); ok {
		return l
	}
	return []any{}
}

// Asset reads an image field given either as a plain URL or as an asset
// object {filename, alt}.
func (c Content) Asset(key string) Asset {
	return toAsset(c.Raw[key])
}

// Assets reads an image collection. Items that carry no filename are kept
// so that callers see the raw collection length; they are skipped later by
// gallery building.
func (c Content) Assets(key string) []Asset {
	list, ok := c.Raw[key].([]any)
	if !ok {
		return []Asset{}
	}

	assets := make([]Asset, 0, len(list))
	for _, item := range list {
		assets = append(assets, toAsset(item))
	}
	return assets
}

// Link reads a link field, either {url, cached_url} or a plain string
func (c Content) Link(key string) Link {
	switch v := c.Raw[key].(type) {
	case map[string]any:
		return Link{
			URL:       scalarString(v["url"]),
			CachedURL: scalarString(v["cached_url"]),
		}
	case string:
		return Link{URL: v}
	default:
		return Link{}
	}
}

// BrandContent is the recognized shape of a brand start page
type BrandContent struct {
	Name        string
	Photo       Asset
	Country     string
	Description string
}

// Brand decodes the brand fields of the content mapping
func (c Content) Brand() BrandContent {
	photo := c.Asset("photo")
	if photo.Filename == "" {
		photo = c.Asset("foto")
	}

	return BrandContent{
		Name:        c.String("name"),
		Photo:       photo,
		Country:     c.String("country"),
		Description: c.String("description"),
	}
}

// ModelContent is the recognized shape of a model story
type ModelContent struct {
	ModelName      string
	Foto           Asset
	Fotos          []Asset
	Year           string
	Description    string
	Specifications map[string]any
	Features       []any
	Price          *string
	PDF            Link
}

// Model decodes the model fields of the content mapping
func (c Content) Model() ModelContent {
	foto := c.Asset("foto")
	if foto.Filename == "" {
		foto = c.Asset("photo")
	}

	modelName := c.String("modelName")
	if modelName == "" {
		modelName = c.String("name")
	}

	var price *string
	if p := c.String("price"); p != "" {
		price = &p
	}

	return ModelContent{
		ModelName:      modelName,
		Foto:           foto,
		Fotos:          c.Assets("fotos"),
		Year:           c.String("year"),
		Description:    c.String("description"),
		Specifications: c.Object("specifications"),
		Features:       c.List("features"),
		Price:          price,
		PDF:            c.Link("pdf"),
	}
}

func toAsset(v any) Asset {
	switch a := v.(type) {
	case string:
		return Asset{Filename: a}
	case map[string]any:
		return Asset{
			Filename: scalarString(a["filename"]),
			Alt:      scalarString(a["alt"]),
		}
	default:
		return Asset{}
	}
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}
