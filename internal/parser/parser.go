// Package parser extracts front matter, wiki links, tags and dates from
// markdown content.
package parser

import (
	"bytes"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/paravault/paravault/internal/models"
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)
	tagRe      = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
)

// dateLayouts are tried in order when parsing front-matter date fields.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Result holds the output of parsing one markdown file.
type Result struct {
	Frontmatter map[string]any
	Body        string
	Title       string
	Tags        []string
	Links       []models.WikiLink
	Created     time.Time
	Modified    time.Time
}

// Parse extracts front matter, body, wiki links, tags and dates from raw
// markdown bytes. It never fails on malformed front matter: invalid YAML
// degrades to a body-only result.
func Parse(data []byte) (*Result, error) {
	fm, body := splitFrontmatter(data)

	res := &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(fm, body),
		Tags:        extractTags(body, fm),
		Links:       ExtractLinks(body),
	}
	res.Created = dateField(fm, "created", "date")
	res.Modified = dateField(fm, "modified", "updated")
	return res, nil
}

// splitFrontmatter separates YAML front matter (between leading ---
// fences) from the markdown body. Missing or invalid front matter leaves
// the entire content as body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}

// ExtractLinks returns every [[wikilink]] occurrence in body, in order,
// with byte offsets. Supported forms: [[target]], [[target|display]],
// [[target#anchor]] and [[target#anchor|display]]. Empty targets are
// skipped.
func ExtractLinks(body string) []models.WikiLink {
	matches := wikilinkRe.FindAllStringSubmatchIndex(body, -1)
	var out []models.WikiLink
	for _, m := range matches {
		start, end := m[0], m[1]
		inner := body[m[2]:m[3]]

		target := inner
		display := ""
		if i := strings.Index(inner, "|"); i >= 0 {
			target = inner[:i]
			display = strings.TrimSpace(inner[i+1:])
		}
		anchor := ""
		if i := strings.Index(target, "#"); i >= 0 {
			anchor = strings.TrimSpace(target[i+1:])
			target = target[:i]
		}
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		out = append(out, models.WikiLink{
			Raw:     body[start:end],
			Target:  target,
			Display: display,
			Anchor:  anchor,
			Start:   start,
			End:     end,
		})
	}
	return out
}

// extractTags collects tags from the front-matter "tags" field and
// inline #tags, lower-cased and deduplicated in first-seen order.
func extractTags(body string, fm map[string]any) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(tag string) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			return
		}
		if _, dup := seen[tag]; dup {
			return
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	if fm != nil {
		switch v := fm["tags"].(type) {
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					add(s)
				}
			}
		case string:
			for _, s := range strings.Split(v, ",") {
				add(s)
			}
		}
	}

	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

// deriveTitle returns the front-matter "title" if present, otherwise the
// first H1 heading, otherwise empty.
func deriveTitle(fm map[string]any, body string) string {
	if fm != nil {
		if t, ok := fm["title"].(string); ok && t != "" {
			return t
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// dateField parses the first present front-matter key as a timestamp.
// yaml.v3 already decodes unquoted dates into time.Time; string values
// are tried against the known layouts.
func dateField(fm map[string]any, keys ...string) time.Time {
	if fm == nil {
		return time.Time{}
	}
	for _, key := range keys {
		raw, ok := fm[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case time.Time:
			return v
		case string:
			for _, layout := range dateLayouts {
				if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
					return t
				}
			}
		}
	}
	return time.Time{}
}
