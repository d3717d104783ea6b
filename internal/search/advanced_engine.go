package search

import (
	"sort"
	"strings"
	"time"

	"github.com/paravault/paravault/internal/apperr"
	"github.com/paravault/paravault/internal/models"
)

// Sort orders for advanced search results.
const (
	SortRelevance = "relevance"
	SortDate      = "date"
	SortTitle     = "title"
	SortPath      = "path"
)

// AdvancedOptions tune one advanced search call.
type AdvancedOptions struct {
	Limit       int
	Offset      int
	Facets      bool
	Suggestions bool
	Snippets    bool
	SortBy      string
	// Fuzzy treats exact clauses as fuzzy ones.
	Fuzzy bool
}

func (o *AdvancedOptions) validate() error {
	if o.Limit < 1 {
		return apperr.InvalidQuery("limit", "must be at least 1")
	}
	if o.Offset < 0 {
		return apperr.InvalidQuery("offset", "cannot be negative")
	}
	switch o.SortBy {
	case "", SortRelevance, SortDate, SortTitle, SortPath:
		return nil
	}
	return apperr.InvalidQuery("sortBy", "must be one of relevance, date, title, path")
}

// QueryInfo reports how a raw query was understood.
type QueryInfo struct {
	Raw       string        `json:"raw,omitempty"`
	Must      int           `json:"must"`
	Should    int           `json:"should"`
	MustNot   int           `json:"mustNot"`
	ParseTime time.Duration `json:"parseTime"`
}

// AdvancedResult is a fully materialized advanced search page.
type AdvancedResult struct {
	Results       []ResultItem  `json:"results"`
	TotalCount    int           `json:"totalCount"`
	ExecutionTime time.Duration `json:"executionTime"`
	Facets        []Facet       `json:"facets,omitempty"`
	Suggestions   []Suggestion  `json:"suggestions,omitempty"`
	SortedBy      string        `json:"sortedBy"`
	QueryInfo     *QueryInfo    `json:"queryInfo,omitempty"`
}

// SimilarResult is one hit of a similar-documents query.
type SimilarResult struct {
	Path       string  `json:"path"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

// AdvancedEngine serves boolean-syntax queries. It composes the base
// engine's read-only view (Paths/Lookup/Suggest) with the query parser,
// the advanced scorer and the facet generator; it never reaches into
// the base engine's document store.
type AdvancedEngine struct {
	index  *Engine
	scorer *AdvancedScorer
}

// NewAdvancedEngine builds an advanced engine over the base engine's
// read view.
func NewAdvancedEngine(index *Engine, scorer *AdvancedScorer) *AdvancedEngine {
	return &AdvancedEngine{index: index, scorer: scorer}
}

// Search parses one raw boolean-syntax query and executes it.
func (a *AdvancedEngine) Search(raw string, opts AdvancedOptions) (*AdvancedResult, error) {
	parseStart := time.Now()
	parsed, err := ParseQuery(raw)
	if err != nil {
		return nil, err
	}
	info := &QueryInfo{
		Raw:       raw,
		ParseTime: time.Since(parseStart),
	}
	return a.searchParsed(parsed, raw, info, opts)
}

// SearchParsed executes a programmatically constructed query.
func (a *AdvancedEngine) SearchParsed(parsed *ParsedQuery, opts AdvancedOptions) (*AdvancedResult, error) {
	return a.searchParsed(parsed, "", nil, opts)
}

func (a *AdvancedEngine) searchParsed(parsed *ParsedQuery, raw string, info *QueryInfo, opts AdvancedOptions) (*AdvancedResult, error) {
	start := time.Now()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if parsed.Empty() {
		return nil, apperr.InvalidQuery("query", "no clauses")
	}
	if opts.Fuzzy {
		parsed = fuzzify(parsed)
	}
	if info != nil {
		info.Must = len(parsed.Must)
		info.Should = len(parsed.Should)
		info.MustNot = len(parsed.MustNot)
	}

	type hit struct {
		doc   *models.Document
		score int
	}
	var hits []hit
	for _, path := range a.index.Paths() {
		doc, ok := a.index.Lookup(path)
		if !ok {
			continue
		}
		if score := a.scorer.ScoreDocument(doc, parsed); score > 0 {
			hits = append(hits, hit{doc: doc, score: score})
		}
	}

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = SortRelevance
	}
	sort.SliceStable(hits, func(i, j int) bool {
		di, dj := hits[i].doc, hits[j].doc
		switch sortBy {
		case SortDate:
			return di.EffectiveDate().After(dj.EffectiveDate())
		case SortTitle:
			return strings.ToLower(di.Title) < strings.ToLower(dj.Title)
		case SortPath:
			return di.Path < dj.Path
		default:
			if hits[i].score != hits[j].score {
				return hits[i].score > hits[j].score
			}
			return di.Path < dj.Path
		}
	})

	matched := make([]*models.Document, len(hits))
	for i, h := range hits {
		matched[i] = h.doc
	}

	page := paginate(len(hits), opts.Offset, opts.Limit)
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
			item.Snippet = clauseSnippet(h.doc, parsed)
		}
		results = append(results, item)
	}

	out := &AdvancedResult{
		Results:       results,
		TotalCount:    len(hits),
		SortedBy:      sortBy,
		QueryInfo:     info,
		ExecutionTime: time.Since(start),
	}
	if opts.Facets {
		out.Facets = GenerateFacets(matched, time.Now())
	}
	if opts.Suggestions && raw != "" {
		out.Suggestions = a.index.Suggest(suggestionSeed(raw), 5)
	}
	return out, nil
}

// SimilarDocuments ranks every other document by similarity to the one
// at path.
func (a *AdvancedEngine) SimilarDocuments(path string, limit int) ([]SimilarResult, error) {
	if limit < 1 {
		return nil, apperr.InvalidQuery("limit", "must be at least 1")
	}
	anchor, ok := a.index.Lookup(path)
	if !ok {
		return nil, apperr.ErrNotFound
	}

	var out []SimilarResult
	for _, p := range a.index.Paths() {
		if p == path {
			continue
		}
		doc, ok := a.index.Lookup(p)
		if !ok {
			continue
		}
		if sim := a.scorer.DocumentSimilarity(anchor, doc); sim > 0 {
			out = append(out, SimilarResult{Path: p, Title: doc.Title, Similarity: sim})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Path < out[j].Path
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fuzzify converts exact clauses into fuzzy ones.
func fuzzify(q *ParsedQuery) *ParsedQuery {
	conv := func(clauses []Clause) []Clause {
		out := make([]Clause, len(clauses))
		for i, c := range clauses {
			if c.Kind == MatchExact {
				c.Kind = MatchFuzzy
			}
			out[i] = c
		}
		return out
	}
	return &ParsedQuery{
		Must:    conv(q.Must),
		Should:  conv(q.Should),
		MustNot: conv(q.MustNot),
	}
}

// clauseSnippet reuses the basic snippet extraction, seeded with the
// first positive clause value.
func clauseSnippet(doc *models.Document, parsed *ParsedQuery) string {
	q := &Query{}
	if len(parsed.Must) > 0 {
		q.Content = parsed.Must[0].Value
	} else if len(parsed.Should) > 0 {
		q.Content = parsed.Should[0].Value
	}
	return snippet(doc, q)
}

// suggestionSeed strips operators and syntax from a raw query, keeping
// the last plain word as the completion seed.
func suggestionSeed(raw string) string {
	seed := ""
	for _, w := range strings.Fields(raw) {
		upper := strings.ToUpper(w)
		if upper == "AND" || upper == "OR" || upper == "NOT" {
			continue
		}
		w = strings.Trim(w, `()"-`)
		if i := strings.IndexByte(w, ':'); i >= 0 {
			w = w[i+1:]
		}
		if w != "" {
			seed = w
		}
	}
	return strings.ToLower(seed)
}
