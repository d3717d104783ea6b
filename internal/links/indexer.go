package links

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/paravault/paravault/internal/apperr"
	"github.com/paravault/paravault/internal/models"
	"github.com/paravault/paravault/internal/parser"
	"github.com/paravault/paravault/internal/storage"
)

// parseParallelism bounds concurrent wiki-link parsing during a full
// build. Graph mutation stays sequential, one document at a time.
const parseParallelism = 8

// QueryType selects one of the five link-query shapes.
type QueryType string

// Link query shapes.
const (
	QueryForward   QueryType = "forward"
	QueryBacklinks QueryType = "backlinks"
	QueryOrphaned  QueryType = "orphaned"
	QueryBroken    QueryType = "broken"
	QueryAll       QueryType = "all"
)

// QueryOptions select a query shape and, where applicable, a document.
type QueryOptions struct {
	Type QueryType `json:"type"`
	Path string    `json:"path,omitempty"`
}

// DocumentLinks is one document's view of the graph.
type DocumentLinks struct {
	Path      string   `json:"path"`
	Forward   []string `json:"forwardLinks,omitempty"`
	Backlinks []string `json:"backlinks,omitempty"`
	Broken    []string `json:"brokenLinks,omitempty"`
}

// PathCount pairs a path with an edge count.
type PathCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// Statistics summarizes the link graph.
type Statistics struct {
	Documents          int         `json:"documents"`
	TotalLinks         int         `json:"totalLinks"`
	BrokenLinks        int         `json:"brokenLinks"`
	MostLinked         []PathCount `json:"mostLinked,omitempty"`
	DocsWithBrokenLink int         `json:"documentsWithBrokenLinks"`
}

// record is one document's node in the graph. Keeping forward,
// backlink and broken sets side by side in a single record lets the
// paired edge helpers enforce forward/backlink symmetry structurally.
type record struct {
	forward   map[string]struct{}
	backlinks map[string]struct{}
	broken    map[string]struct{}
	// links caches the parsed wiki links of an indexed document; nil
	// for paths that only appear as link targets.
	links []models.WikiLink
	isDoc bool
}

func newRecord() *record {
	return &record{
		forward:   make(map[string]struct{}),
		backlinks: make(map[string]struct{}),
		broken:    make(map[string]struct{}),
	}
}

// Indexer owns the in-memory link graph. Mutating operations must be
// externally serialized, mirroring the search engine's discipline.
type Indexer struct {
	store    storage.Provider
	resolver *Resolver
	logger   *slog.Logger

	graph map[string]*record
}

// NewIndexer creates an empty link indexer over the given vault.
func NewIndexer(store storage.Provider, logger *slog.Logger) *Indexer {
	return &Indexer{
		store:    store,
		resolver: NewResolver(store),
		logger:   logger,
		graph:    make(map[string]*record),
	}
}

// Build clears the graph, parses every document's wiki links in
// parallel, then applies each document's links sequentially so no
// interleaved partial writes can break edge symmetry. The rebuilt
// graph becomes visible as a whole.
func (x *Indexer) Build(ctx context.Context) error {
	var entries []storage.Entry
	for _, cat := range models.Categories() {
		list, err := x.store.List(string(cat))
		if err != nil {
			return apperr.Index("enumerate "+string(cat), err)
		}
		entries = append(entries, list...)
	}

	parsed := make(map[string][]models.WikiLink, len(entries))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parseParallelism)
	for _, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			links, err := x.parseLinks(entry.Path)
			if err != nil {
				x.logger.Warn("links: skipping document",
					slog.String("path", entry.Path),
					slog.String("error", err.Error()))
				return nil
			}
			mu.Lock()
			parsed[entry.Path] = links
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return apperr.Index("build links", err)
	}

	// Apply into a detached graph, one document at a time, then swap it
	// in whole so no partial state is observable mid-rebuild.
	graph := make(map[string]*record, len(parsed))
	for _, entry := range entries {
		links, ok := parsed[entry.Path]
		if !ok {
			continue
		}
		ensure(graph, entry.Path).isDoc = true
		x.applyLinks(graph, entry.Path, links)
	}
	x.graph = graph

	x.logger.Info("links: graph built",
		slog.Int("documents", len(parsed)))
	return nil
}

func (x *Indexer) parseLinks(path string) ([]models.WikiLink, error) {
	data, err := x.store.Read(path)
	if err != nil {
		return nil, err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	return res.Links, nil
}

func ensure(graph map[string]*record, path string) *record {
	rec, ok := graph[path]
	if !ok {
		rec = newRecord()
		graph[path] = rec
	}
	return rec
}

// applyLinks records one document's outgoing edges. A resolved target
// lands either in the forward set (paired with the target's backlink)
// or in the broken set, never both.
func (x *Indexer) applyLinks(graph map[string]*record, source string, links []models.WikiLink) {
	rec := ensure(graph, source)
	rec.links = links
	for _, link := range links {
		resolved := x.resolver.Resolve(link.Target, source)
		if resolved == "" || resolved == source {
			continue
		}
		if x.store.Exists(resolved) {
			addEdge(graph, source, resolved)
		} else {
			rec.broken[resolved] = struct{}{}
		}
	}
}

// addEdge inserts a forward edge and its backlink mirror together.
func addEdge(graph map[string]*record, source, target string) {
	ensure(graph, source).forward[target] = struct{}{}
	ensure(graph, target).backlinks[source] = struct{}{}
}

// dropOutgoing removes every outgoing edge of source, including the
// backlink mirrors held by its targets.
func (x *Indexer) dropOutgoing(source string) {
	rec, ok := x.graph[source]
	if !ok {
		return
	}
	for target := range rec.forward {
		if t, ok := x.graph[target]; ok {
			delete(t.backlinks, source)
		}
	}
	rec.forward = make(map[string]struct{})
	rec.broken = make(map[string]struct{})
	rec.links = nil
}

// Update removes one document's edges and, when the file still exists,
// reparses and reapplies them. Edge symmetry holds throughout.
func (x *Indexer) Update(path string) error {
	x.dropOutgoing(path)
	if _, ok := models.CategoryFromPath(path); !ok || !x.store.Exists(path) {
		return x.Remove(path)
	}
	links, err := x.parseLinks(path)
	if err != nil {
		return apperr.Index("update links "+path, err)
	}
	ensure(x.graph, path).isDoc = true
	x.applyLinks(x.graph, path, links)
	return nil
}

// Remove drops a document from the graph: its outgoing edges, their
// backlink mirrors and its own record. Forward edges of other documents
// that point at it are re-evaluated on their owners' next update or on
// a rebuild.
func (x *Indexer) Remove(path string) error {
	x.dropOutgoing(path)
	delete(x.graph, path)
	return nil
}

// Query answers one of the five query shapes. Results are fully
// materialized and sorted deterministically.
func (x *Indexer) Query(opts QueryOptions) ([]DocumentLinks, error) {
	switch opts.Type {
	case QueryForward:
		rec, ok := x.graph[opts.Path]
		if !ok {
			return []DocumentLinks{{Path: opts.Path}}, nil
		}
		return []DocumentLinks{{Path: opts.Path, Forward: sortedKeys(rec.forward)}}, nil

	case QueryBacklinks:
		rec, ok := x.graph[opts.Path]
		if !ok {
			return []DocumentLinks{{Path: opts.Path}}, nil
		}
		return []DocumentLinks{{Path: opts.Path, Backlinks: sortedKeys(rec.backlinks)}}, nil

	case QueryOrphaned:
		var out []DocumentLinks
		for _, path := range x.docPaths() {
			rec := x.graph[path]
			if len(rec.backlinks) == 0 {
				out = append(out, DocumentLinks{Path: path})
			}
		}
		return out, nil

	case QueryBroken:
		var out []DocumentLinks
		for _, path := range x.docPaths() {
			rec := x.graph[path]
			if len(rec.broken) > 0 {
				out = append(out, DocumentLinks{Path: path, Broken: sortedKeys(rec.broken)})
			}
		}
		sort.SliceStable(out, func(i, j int) bool {
			if len(out[i].Broken) != len(out[j].Broken) {
				return len(out[i].Broken) > len(out[j].Broken)
			}
			return out[i].Path < out[j].Path
		})
		return out, nil

	case QueryAll:
		paths := x.docPaths()
		if opts.Path != "" {
			paths = []string{opts.Path}
		}
		out := make([]DocumentLinks, 0, len(paths))
		for _, path := range paths {
			rec, ok := x.graph[path]
			if !ok {
				out = append(out, DocumentLinks{Path: path})
				continue
			}
			out = append(out, DocumentLinks{
				Path:      path,
				Forward:   sortedKeys(rec.forward),
				Backlinks: sortedKeys(rec.backlinks),
				Broken:    sortedKeys(rec.broken),
			})
		}
		return out, nil
	}
	return nil, apperr.InvalidQuery("type", "must be one of forward, backlinks, orphaned, broken, all")
}

// Statistics returns graph-wide counters.
func (x *Indexer) Statistics() Statistics {
	stats := Statistics{}
	var linked []PathCount
	for path, rec := range x.graph {
		if rec.isDoc {
			stats.Documents++
		}
		stats.TotalLinks += len(rec.forward)
		stats.BrokenLinks += len(rec.broken)
		if len(rec.broken) > 0 {
			stats.DocsWithBrokenLink++
		}
		if n := len(rec.backlinks); n > 0 {
			linked = append(linked, PathCount{Path: path, Count: n})
		}
	}
	sort.Slice(linked, func(i, j int) bool {
		if linked[i].Count != linked[j].Count {
			return linked[i].Count > linked[j].Count
		}
		return linked[i].Path < linked[j].Path
	})
	if len(linked) > 10 {
		linked = linked[:10]
	}
	stats.MostLinked = linked
	return stats
}

// Paths returns every indexed document path in ascending order.
func (x *Indexer) Paths() []string { return x.docPaths() }

// docPaths returns every indexed document path in ascending order.
func (x *Indexer) docPaths() []string {
	var paths []string
	for path, rec := range x.graph {
		if rec.isDoc {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
