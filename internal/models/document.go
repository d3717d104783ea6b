// Package models defines the domain types for Paravault.
package models

import (
	"strings"
	"time"
)

// Category is one of the four fixed PARA taxonomy roots.
type Category string

// The four corpus roots. Every indexed document lives under exactly one.
const (
	CategoryProjects  Category = "projects"
	CategoryAreas     Category = "areas"
	CategoryResources Category = "resources"
	CategoryArchives  Category = "archives"
)

// Categories returns the taxonomy in its fixed order.
func Categories() []Category {
	return []Category{CategoryProjects, CategoryAreas, CategoryResources, CategoryArchives}
}

// ValidCategory reports whether s names one of the four roots.
func ValidCategory(s string) bool {
	switch Category(strings.ToLower(s)) {
	case CategoryProjects, CategoryAreas, CategoryResources, CategoryArchives:
		return true
	}
	return false
}

// CategoryFromPath derives the category from a corpus-relative path.
// The second return is false when the first path segment is not a
// taxonomy root.
func CategoryFromPath(path string) (Category, bool) {
	seg := path
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	c := Category(strings.ToLower(seg))
	switch c {
	case CategoryProjects, CategoryAreas, CategoryResources, CategoryArchives:
		return c, true
	}
	return "", false
}

// WikiLink is one [[target|display]] occurrence extracted from a body.
type WikiLink struct {
	Raw     string `json:"raw"`
	Target  string `json:"target"`
	Display string `json:"display,omitempty"`
	Anchor  string `json:"anchor,omitempty"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// Document is one indexed corpus document. The corpus-relative path is
// its identity. Token sets are precomputed at index time and are always
// lower-case, whitespace-free and non-empty.
type Document struct {
	Path     string   `json:"path"`
	Title    string   `json:"title"`
	Body     string   `json:"-"`
	Tags     []string `json:"tags,omitempty"`
	Category Category `json:"category"`

	Created  time.Time `json:"created,omitempty"`
	Modified time.Time `json:"modified,omitempty"`

	TitleTokens []string `json:"-"`
	BodyTokens  []string `json:"-"`
	TagTokens   []string `json:"-"`

	Checksum string `json:"checksum,omitempty"`
}

// EffectiveDate is the modification time when known, otherwise the
// creation time. The zero time means the document carries no date.
func (d *Document) EffectiveDate() time.Time {
	if !d.Modified.IsZero() {
		return d.Modified
	}
	return d.Created
}

// HasTag reports whether tag is present in the normalized tag list.
func (d *Document) HasTag(tag string) bool {
	tag = strings.ToLower(tag)
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
