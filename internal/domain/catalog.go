package domain

// UnknownCountry is used when a brand has no country
const UnknownCountry = "Unknown"

type Brand struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`               // unique across brands
	ImageURL    string   `json:"imageUrl,omitempty"` // "" when the brand has no photo
	Country     string   `json:"country"`
	Description string   `json:"description"`
	Models      []*Model `json:"models"`
}

type Model struct {
	ID             string         `json:"id"`
	UUID           string         `json:"uuid,omitempty"`
	Name           string         `json:"name"`
	Slug           string         `json:"slug"`     // unique within the owning brand
	Path           string         `json:"path"`     // brand-slug/model-slug
	FullSlug       string         `json:"fullSlug"` // path as stored by the content API
	ImageURL       string         `json:"imageUrl,omitempty"`
	Year           string         `json:"year"`
	Description    string         `json:"description"`
	Price          *string        `json:"price"`
	PDF            string         `json:"pdf"`
	Specifications map[string]any `json:"specifications,omitempty"`
	Features       []any          `json:"features,omitempty"`
	Fotos          []Asset        `json:"fotos,omitempty"`
	Images         []Image        `json:"images,omitempty"`
	CreatedAt      string         `json:"createdAt,omitempty"`
	UpdatedAt      string         `json:"updatedAt,omitempty"`
	PublishedAt    string         `json:"publishedAt,omitempty"`
}

// Image is a gallery entry
type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// Asset is an image reference as stored by the content API
type Asset struct {
	Filename string `json:"filename"`
	Alt      string `json:"alt,omitempty"`
}

// Link is a document reference as stored by the content API
type Link struct {
	URL       string `json:"url,omitempty"`
	CachedURL string `json:"cached_url,omitempty"`
}

// Href returns the url, falling back to the cached url
func (l Link) Href() string {
	if l.URL != "" {
		return l.URL
	}
	return l.CachedURL
}

// Category is a display filter, unrelated to the brand tree
type Category struct {
	ID          string `json:"id" mapstructure:"id"`
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`
}

var DefaultCategories = []Category{
	{ID: "1", Name: "Sedan", Description: "Four-door passenger car with a separate trunk"},
	{ID: "2", Name: "SUV", Description: "Sport Utility Vehicle with higher ground clearance"},
	{ID: "3", Name: "Truck", Description: "Vehicle with an open cargo area"},
	{ID: "4", Name: "Sports Car", Description: "High-performance vehicle designed for speed"},
	{ID: "5", Name: "Electric", Description: "Vehicles powered by electricity"},
}
