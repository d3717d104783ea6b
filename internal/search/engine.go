package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/paravault/paravault/internal/apperr"
	"github.com/paravault/paravault/internal/models"
	"github.com/paravault/paravault/internal/parser"
	"github.com/paravault/paravault/internal/storage"
)

// buildParallelism bounds concurrent document parsing during a full
// build. Parsing is independent per file; installation into the index
// is sequential.
const buildParallelism = 8

// SearchOptions tune one search call.
type SearchOptions struct {
	// Snippets attaches a highlighted body excerpt to each result.
	Snippets bool
}

// ResultItem is one scored hit.
type ResultItem struct {
	Path     string          `json:"path"`
	Title    string          `json:"title"`
	Category models.Category `json:"category"`
	Tags     []string        `json:"tags,omitempty"`
	Score    int             `json:"relevanceScore"`
	Snippet  string          `json:"snippet,omitempty"`
	Modified time.Time       `json:"modified,omitempty"`
}

// Result is a fully materialized search page.
type Result struct {
	Results       []ResultItem  `json:"results"`
	TotalCount    int           `json:"totalCount"`
	ExecutionTime time.Duration `json:"executionTime"`
}

// Stats summarizes the index.
type Stats struct {
	Documents  int            `json:"documents"`
	ByCategory map[string]int `json:"byCategory"`
	Tags       int            `json:"tags"`
	LastBuild  time.Time      `json:"lastBuild,omitempty"`
}

// Engine owns the in-memory document index. Mutating operations (Build,
// Update, Remove) must be externally serialized; reads may interleave
// with each other.
type Engine struct {
	store     storage.Provider
	scorer    *Scorer
	fuzzy     *Matcher
	suggester *Suggester
	logger    *slog.Logger

	docs    map[string]*models.Document
	builtAt time.Time
}

// NewEngine creates an empty engine over the given vault.
func NewEngine(store storage.Provider, scorer *Scorer, fuzzy *Matcher, logger *slog.Logger) *Engine {
	return &Engine{
		store:     store,
		scorer:    scorer,
		fuzzy:     fuzzy,
		suggester: NewSuggester(fuzzy),
		logger:    logger,
		docs:      make(map[string]*models.Document),
	}
}

// Build clears and re-scans every document under every category root.
// Per-document parse failures are logged and skipped; only a failing
// corpus enumeration aborts the build. The rebuilt index becomes
// visible as a whole.
func (e *Engine) Build(ctx context.Context) error {
	var entries []storage.Entry
	for _, cat := range models.Categories() {
		list, err := e.store.List(string(cat))
		if err != nil {
			return apperr.Index("enumerate "+string(cat), err)
		}
		entries = append(entries, list...)
	}

	docs := make(map[string]*models.Document, len(entries))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(buildParallelism)
	for _, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := e.loadDocument(entry.Path)
			if err != nil {
				e.logger.Warn("index: skipping document",
					slog.String("path", entry.Path),
					slog.String("error", err.Error()))
				return nil
			}
			mu.Lock()
			docs[doc.Path] = doc
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return apperr.Index("build", err)
	}

	suggester := NewSuggester(e.fuzzy)
	for _, doc := range docs {
		suggester.Add(doc)
	}

	e.docs = docs
	e.suggester = suggester
	e.builtAt = time.Now()
	e.logger.Info("index: built", slog.Int("documents", len(docs)))
	return nil
}

// loadDocument reads and parses one corpus file into an indexed
// document.
func (e *Engine) loadDocument(path string) (*models.Document, error) {
	category, ok := models.CategoryFromPath(path)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	data, err := e.store.Read(path)
	if err != nil {
		return nil, err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}

	title := res.Title
	if title == "" {
		title = stemOf(path)
	}
	doc := &models.Document{
		Path:     path,
		Title:    title,
		Body:     res.Body,
		Tags:     res.Tags,
		Category: category,
		Created:  res.Created,
		Modified: res.Modified,
	}
	if doc.Modified.IsZero() {
		if info, err := e.store.Stat(path); err == nil {
			doc.Modified = info.ModTime
		}
	}
	doc.TitleTokens = Tokenize(doc.Title)
	doc.BodyTokens = Tokenize(doc.Body)
	for _, t := range doc.Tags {
		doc.TagTokens = append(doc.TagTokens, Tokenize(t)...)
	}
	return doc, nil
}

func stemOf(path string) string {
	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

// Search validates the query, scores every candidate, discards zero
// scores, sorts (score descending, path ascending) and paginates.
// TotalCount is the pre-pagination hit count.
func (e *Engine) Search(q Query, opts SearchOptions) (*Result, error) {
	start := time.Now()
	q.Normalize()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	type hit struct {
		doc   *models.Document
		score int
	}
	var hits []hit
	for _, doc := range e.docs {
		if score := e.scorer.Score(doc, &q); score > 0 {
			hits = append(hits, hit{doc: doc, score: score})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].doc.Path < hits[j].doc.Path
	})

	total := len(hits)
	page := paginate(len(hits), q.Offset, q.Limit)
	results := make([]ResultItem, 0, page.end-page.start)
	for _, h := range hits[page.start:page.end] {
		item := ResultItem{
			Path:     h.doc.Path,
			Title:    h.doc.Title,
			Category: h.doc.Category,
			Tags:     h.doc.Tags,
			Score:    h.score,
			Modified: h.doc.Modified,
		}
		if opts.Snippets {
			item.Snippet = snippet(h.doc, &q)
		}
		results = append(results, item)
	}

	return &Result{
		Results:       results,
		TotalCount:    total,
		ExecutionTime: time.Since(start),
	}, nil
}

type pageBounds struct{ start, end int }

func paginate(total, offset, limit int) pageBounds {
	if offset >= total {
		return pageBounds{total, total}
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return pageBounds{offset, end}
}

// Update re-indexes a single document, removing it when it no longer
// exists or no longer lives under a category root.
func (e *Engine) Update(path string) error {
	if _, ok := models.CategoryFromPath(path); !ok || !e.store.Exists(path) {
		return e.Remove(path)
	}
	doc, err := e.loadDocument(path)
	if err != nil {
		return apperr.Index("update "+path, err)
	}
	if old, ok := e.docs[path]; ok {
		e.suggester.Remove(old)
	}
	e.docs[path] = doc
	e.suggester.Add(doc)
	return nil
}

// Remove deletes a single document from the index. Removing an unknown
// path is a no-op.
func (e *Engine) Remove(path string) error {
	old, ok := e.docs[path]
	if !ok {
		return nil
	}
	e.suggester.Remove(old)
	delete(e.docs, path)
	return nil
}

// Stats returns current index statistics.
func (e *Engine) Stats() Stats {
	byCategory := make(map[string]int)
	tags := make(map[string]struct{})
	for _, doc := range e.docs {
		byCategory[string(doc.Category)]++
		for _, t := range doc.Tags {
			tags[t] = struct{}{}
		}
	}
	return Stats{
		Documents:  len(e.docs),
		ByCategory: byCategory,
		Tags:       len(tags),
		LastBuild:  e.builtAt,
	}
}

// Paths returns every indexed path in ascending order. Together with
// Lookup it is the read-only view the advanced engine composes with.
func (e *Engine) Paths() []string {
	paths := make([]string, 0, len(e.docs))
	for p := range e.docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Lookup returns the indexed document at path.
func (e *Engine) Lookup(path string) (*models.Document, bool) {
	doc, ok := e.docs[path]
	return doc, ok
}

// Count returns the number of indexed documents.
func (e *Engine) Count() int { return len(e.docs) }

// Suggest exposes the suggestion engine for the given input.
func (e *Engine) Suggest(input string, limit int) []Suggestion {
	return e.suggester.Suggest(input, limit)
}

// snippet bounds.
const (
	snippetRadius = 60
	snippetMax    = 160
)

// snippet extracts a highlighted excerpt around the first query hit in
// the body, falling back to the body head.
func snippet(doc *models.Document, q *Query) string {
	body := doc.Body
	if body == "" {
		return ""
	}

	needle := strings.ToLower(strings.TrimSpace(q.Content))
	if needle == "" {
		needle = strings.ToLower(strings.TrimSpace(q.Title))
	}
	if needle == "" && len(q.Tags) > 0 {
		needle = q.Tags[0]
	}

	pos, matchEnd := findFold(body, needle)
	if pos < 0 {
		head := body
		if len(head) > snippetMax {
			cut := snippetMax
			for cut > 0 && !utf8.RuneStart(head[cut]) {
				cut--
			}
			head = head[:cut] + "..."
		}
		return strings.TrimSpace(strings.ReplaceAll(head, "\n", " "))
	}

	start := pos - snippetRadius
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(body[start]) {
		start--
	}
	end := matchEnd + snippetRadius
	if end > len(body) {
		end = len(body)
	}
	for end < len(body) && !utf8.RuneStart(body[end]) {
		end++
	}

	excerpt := body[start:pos] + "**" + body[pos:matchEnd] + "**" + body[matchEnd:end]
	excerpt = strings.TrimSpace(strings.ReplaceAll(excerpt, "\n", " "))
	if start > 0 {
		excerpt = "..." + excerpt
	}
	if end < len(body) {
		excerpt += "..."
	}
	return excerpt
}

// findFold returns the byte offsets in body of the first
// case-insensitive occurrence of needle, which must already be
// lower-cased. Offsets index body itself, so characters whose
// lower-case form differs in byte length stay safe to slice.
func findFold(body, needle string) (start, end int) {
	if needle == "" {
		return -1, -1
	}
	for i := range body {
		if n, ok := foldPrefix(body[i:], needle); ok {
			return i, i + n
		}
	}
	return -1, -1
}

// foldPrefix reports whether s begins with needle under simple
// case-folding, returning the byte length of the matched prefix of s.
func foldPrefix(s, needle string) (int, bool) {
	j := 0
	for _, nr := range needle {
		r, size := utf8.DecodeRuneInString(s[j:])
		if size == 0 || unicode.ToLower(r) != nr {
			return 0, false
		}
		j += size
	}
	return j, true
}
