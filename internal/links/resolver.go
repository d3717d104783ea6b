// Package links builds and queries the bidirectional wiki-link graph
// of the corpus.
package links

import (
	"path"
	"strings"

	"github.com/paravault/paravault/internal/models"
	"github.com/paravault/paravault/internal/storage"
)

// Resolver turns raw wiki-link targets into corpus-relative paths.
type Resolver struct {
	store storage.Provider
}

// NewResolver creates a resolver over the given vault.
func NewResolver(store storage.Provider) *Resolver {
	return &Resolver{store: store}
}

// Resolve maps a raw target, as written in the referencing document at
// sourcePath, to a corpus-relative path. A leading slash pins the
// target to the corpus root. Path-qualified targets try the root
// first, then the source document's directory, then each category
// root; bare names try the source directory first. Explicitly relative
// targets (./ or ../) stay relative to the source directory. Each base
// expands extension variants; the first existing candidate wins, and
// when none exist the first candidate is returned so the caller can
// record a broken link. Only an empty target resolves to "".
func (r *Resolver) Resolve(target, sourcePath string) string {
	target = strings.TrimSpace(target)
	if i := strings.IndexByte(target, '#'); i >= 0 {
		target = strings.TrimSpace(target[:i])
	}
	if target == "" {
		return ""
	}
	target = strings.ReplaceAll(target, "\\", "/")

	sourceDir := path.Dir(sourcePath)
	var bases []string
	switch {
	case strings.HasPrefix(target, "/"):
		bases = append(bases, strings.TrimPrefix(target, "/"))
	case strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../"):
		if sourceDir != "." {
			bases = append(bases, path.Join(sourceDir, target))
		}
		bases = append(bases, target)
	case strings.Contains(target, "/"):
		bases = append(bases, target)
		if sourceDir != "." {
			bases = append(bases, path.Join(sourceDir, target))
		}
		for _, cat := range models.Categories() {
			bases = append(bases, path.Join(string(cat), target))
		}
	default:
		if sourceDir != "." {
			bases = append(bases, path.Join(sourceDir, target))
		}
		bases = append(bases, target)
		for _, cat := range models.Categories() {
			bases = append(bases, path.Join(string(cat), target))
		}
	}

	seen := make(map[string]struct{})
	var candidates []string
	for _, base := range bases {
		for _, candidate := range withExtensions(base) {
			cleaned := path.Clean(candidate)
			// Reject anything that escapes the corpus root.
			if cleaned == "." || cleaned == ".." ||
				strings.HasPrefix(cleaned, "../") || strings.HasPrefix(cleaned, "/") {
				continue
			}
			if _, dup := seen[cleaned]; dup {
				continue
			}
			seen[cleaned] = struct{}{}
			candidates = append(candidates, cleaned)
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	for _, c := range candidates {
		if r.store.Exists(c) {
			return c
		}
	}
	return candidates[0]
}

// withExtensions expands a base path with extension variants: as-is
// when it already carries a known extension, otherwise `.md` first,
// then bare, then the remaining recognized extensions.
func withExtensions(base string) []string {
	if storage.IsMarkdown(base) {
		return []string{base}
	}
	exts := storage.MarkdownExtensions()
	out := make([]string, 0, len(exts)+1)
	out = append(out, base+exts[0], base)
	for _, e := range exts[1:] {
		out = append(out, base+e)
	}
	return out
}
