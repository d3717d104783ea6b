package parser

import (
	"testing"
	"time"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\ntags:\n  - go\n  - search\n---\n# Hello\nBody text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Hello" {
		t.Errorf("title = %q, want %q", r.Title, "Hello")
	}
	if len(r.Tags) != 2 || r.Tags[0] != "go" || r.Tags[1] != "search" {
		t.Errorf("tags = %v, want [go search]", r.Tags)
	}
	if r.Body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Just a heading\nSome text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", r.Title, "Just a heading")
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Invalid YAML falls back to treating everything as body.
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	if r.Body == "" {
		t.Errorf("expected the raw content as body")
	}
}

func TestParse_Dates(t *testing.T) {
	input := []byte("---\ncreated: 2024-03-01\nmodified: 2024-04-15T10:30:00Z\n---\nBody\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Created.IsZero() || r.Created.Year() != 2024 || r.Created.Month() != time.March {
		t.Errorf("created = %v", r.Created)
	}
	if r.Modified.IsZero() || r.Modified.Day() != 15 {
		t.Errorf("modified = %v", r.Modified)
	}
}

func TestParse_DateAliases(t *testing.T) {
	input := []byte("---\ndate: 2023-06-10\nupdated: 2023-07-01\n---\nBody\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Created.Month() != time.June {
		t.Errorf("created = %v, want June from the date alias", r.Created)
	}
	if r.Modified.Month() != time.July {
		t.Errorf("modified = %v, want July from the updated alias", r.Modified)
	}
}

func TestExtractLinks_Forms(t *testing.T) {
	body := "See [[Note A]], [[Note B|alias]], [[Note C#section]] and [[Note D#top|shown]]."
	links := ExtractLinks(body)
	if len(links) != 4 {
		t.Fatalf("len(links) = %d, want 4", len(links))
	}
	if links[0].Target != "Note A" || links[0].Display != "" || links[0].Anchor != "" {
		t.Errorf("link[0] = %+v", links[0])
	}
	if links[1].Target != "Note B" || links[1].Display != "alias" {
		t.Errorf("link[1] = %+v", links[1])
	}
	if links[2].Target != "Note C" || links[2].Anchor != "section" {
		t.Errorf("link[2] = %+v", links[2])
	}
	if links[3].Target != "Note D" || links[3].Anchor != "top" || links[3].Display != "shown" {
		t.Errorf("link[3] = %+v", links[3])
	}
}

func TestExtractLinks_Offsets(t *testing.T) {
	body := "ab [[x]] cd"
	links := ExtractLinks(body)
	if len(links) != 1 {
		t.Fatalf("len(links) = %d, want 1", len(links))
	}
	if links[0].Start != 3 || links[0].End != 8 {
		t.Errorf("offsets = [%d,%d), want [3,8)", links[0].Start, links[0].End)
	}
	if links[0].Raw != "[[x]]" {
		t.Errorf("raw = %q", links[0].Raw)
	}
}

func TestExtractLinks_EmptyTarget(t *testing.T) {
	links := ExtractLinks("see [[ ]] and [[|alias]] and [[#anchor-only]]")
	if len(links) != 0 {
		t.Errorf("expected no links, got %v", links)
	}
}

func TestExtractTags_InlineAndFrontmatter(t *testing.T) {
	input := []byte("---\ntags:\n  - Alpha\n---\nSome text #beta and #alpha again.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// alpha from FM (lower-cased), beta from body; alpha not duplicated.
	if len(r.Tags) != 2 || r.Tags[0] != "alpha" || r.Tags[1] != "beta" {
		t.Errorf("tags = %v, want [alpha beta]", r.Tags)
	}
}

func TestExtractTags_CommaString(t *testing.T) {
	input := []byte("---\ntags: one, two\n---\nBody\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Tags) != 2 || r.Tags[0] != "one" || r.Tags[1] != "two" {
		t.Errorf("tags = %v, want [one two]", r.Tags)
	}
}

func TestDeriveTitle_FrontmatterOverH1(t *testing.T) {
	input := []byte("---\ntitle: From FM\n---\n# From Heading\nBody\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "From FM" {
		t.Errorf("title = %q, want %q", r.Title, "From FM")
	}
}
