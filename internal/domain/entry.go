package domain

// Version selectors accepted by the content API
const (
	VersionPublished = "published"
	VersionDraft     = "draft"
)

// Entry is a single story returned by the content API. A folder start page
// represents a brand, a leaf story represents a model.
type Entry struct {
	ID          int64    `json:"id"`
	UUID        string   `json:"uuid"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	FullSlug    string   `json:"full_slug"`
	IsStartPage bool     `json:"is_startpage"`
	TagList     []string `json:"tag_list,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
	PublishedAt string   `json:"published_at"`
	Content     Content  `json:"content"`
}

// StoryList is the envelope of a story listing call
type StoryList struct {
	Stories []Entry `json:"stories"`
}

// StoryEnvelope is the envelope of a single story call
type StoryEnvelope struct {
	Story Entry `json:"story"`
}

// ListOptions filters a story listing
type ListOptions struct {
	ExcludingSlugs string // exact-slug exclusion pattern, e.g. "brands/*/[^/]*"
	WithTag        string // tag filter
	Version        string // "published" unless set
}

// GetOptions tunes a single story fetch
type GetOptions struct {
	Version string
}
