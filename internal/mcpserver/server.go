// Package mcpserver exposes the document and link indices as MCP
// (Model Context Protocol) tools over stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/paravault/paravault/internal/links"
	"github.com/paravault/paravault/internal/search"
	"github.com/paravault/paravault/internal/storage"
)

// defaultLimit is the page size applied when a caller omits one.
const defaultLimit = 10

// Server wraps the MCP server with the Paravault tool set.
type Server struct {
	mcp      *server.MCPServer
	store    storage.Provider
	engine   *search.Engine
	advanced *search.AdvancedEngine
	links    *links.Indexer
}

// New creates an MCP server with every query tool registered. Tool
// dispatch is single-threaded per connection, which satisfies the
// external-serialization requirement of the mutating tools.
func New(store storage.Provider, engine *search.Engine, advanced *search.AdvancedEngine, linkIndex *links.Indexer) *Server {
	s := &Server{
		store:    store,
		engine:   engine,
		advanced: advanced,
		links:    linkIndex,
	}

	s.mcp = server.NewMCPServer(
		"Paravault",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Search the corpus with structured filters: tags, title, content, category, operator."),
		mcp.WithString("tags", mcp.Description("Comma-separated tags to match")),
		mcp.WithString("title", mcp.Description("Title substring")),
		mcp.WithString("content", mcp.Description("Content substring")),
		mcp.WithString("category", mcp.Description("One of projects, areas, resources, archives")),
		mcp.WithString("operator", mcp.Description("AND (default) or OR")),
		mcp.WithNumber("limit", mcp.Description("Page size (default 10)")),
		mcp.WithNumber("offset", mcp.Description("Page offset (default 0)")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("query_search",
		mcp.WithDescription("Boolean-syntax search. Supports AND/OR/NOT, quoted phrases, "+
			"field:value (title, content, tags), wildcards (* and ?) and parentheses."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Raw query string")),
		mcp.WithNumber("limit", mcp.Description("Page size (default 10)")),
		mcp.WithNumber("offset", mcp.Description("Page offset (default 0)")),
		mcp.WithString("sort_by", mcp.Description("relevance (default), date, title or path")),
		mcp.WithBoolean("facets", mcp.Description("Attach facet counts")),
		mcp.WithBoolean("suggestions", mcp.Description("Attach completion suggestions")),
		mcp.WithBoolean("fuzzy", mcp.Description("Match plain terms fuzzily")),
	), s.querySearch)

	s.mcp.AddTool(mcp.NewTool("similar_documents",
		mcp.WithDescription("Rank documents by similarity to the one at path."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Corpus-relative document path")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 10)")),
	), s.similarDocuments)

	s.mcp.AddTool(mcp.NewTool("query_links",
		mcp.WithDescription("Query the wiki-link graph. Shapes: forward, backlinks, orphaned, broken, all."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Query shape")),
		mcp.WithString("path", mcp.Description("Document path (required for forward/backlinks)")),
	), s.queryLinks)

	s.mcp.AddTool(mcp.NewTool("link_statistics",
		mcp.WithDescription("Link graph statistics: totals, most-linked documents, broken-link counts."),
	), s.linkStatistics)

	s.mcp.AddTool(mcp.NewTool("index_stats",
		mcp.WithDescription("Document index statistics: counts per category, tag count, last build time."),
	), s.indexStats)

	s.mcp.AddTool(mcp.NewTool("rebuild_index",
		mcp.WithDescription("Rebuild both the document index and the link graph from the corpus."),
	), s.rebuildIndex)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the raw content of a corpus document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Corpus-relative document path")),
	), s.readDocument)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// Serve runs the stdio transport until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := search.Query{
		Title:    req.GetString("title", ""),
		Content:  req.GetString("content", ""),
		Category: req.GetString("category", ""),
		Operator: search.Operator(req.GetString("operator", "")),
		Limit:    req.GetInt("limit", defaultLimit),
		Offset:   req.GetInt("offset", 0),
	}
	if tags := req.GetString("tags", ""); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				q.Tags = append(q.Tags, t)
			}
		}
	}

	result, err := s.engine.Search(q, search.SearchOptions{Snippets: true})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) querySearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := search.AdvancedOptions{
		Limit:       req.GetInt("limit", defaultLimit),
		Offset:      req.GetInt("offset", 0),
		SortBy:      req.GetString("sort_by", ""),
		Facets:      req.GetBool("facets", false),
		Suggestions: req.GetBool("suggestions", false),
		Fuzzy:       req.GetBool("fuzzy", false),
		Snippets:    true,
	}
	result, err := s.advanced.Search(raw, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) similarDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := s.advanced.SimilarDocuments(path, req.GetInt("limit", defaultLimit))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) queryLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	qt, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := s.links.Query(links.QueryOptions{
		Type: links.QueryType(strings.ToLower(qt)),
		Path: req.GetString("path", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) linkStatistics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.links.Statistics())
}

func (s *Server) indexStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.engine.Stats())
}

func (s *Server) rebuildIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.engine.Build(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.links.Build(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("rebuilt: %d documents", s.engine.Count())), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
