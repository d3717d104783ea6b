package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/paravault/paravault/internal"
	"github.com/paravault/paravault/internal/links"
	"github.com/paravault/paravault/internal/search"
	pkgconfig "github.com/paravault/paravault/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfPresent(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if vault := cmd.String("vault"); vault != "" {
		cfg.Vault.Path = vault
	}
	return cfg, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	app, err := oneShot(ctx, cmd)
	if err != nil {
		return err
	}
	printJSON(map[string]any{
		"index": app.Engine.Stats(),
		"links": app.Links.Statistics(),
	})
	return nil
}

func runSearch(ctx context.Context, cmd *cli.Command) error {
	app, err := oneShot(ctx, cmd)
	if err != nil {
		return err
	}

	if raw := cmd.String("query"); raw != "" {
		result, err := app.Advanced.Search(raw, search.AdvancedOptions{
			Limit:       cmd.Int("limit"),
			Offset:      cmd.Int("offset"),
			SortBy:      cmd.String("sort"),
			Facets:      cmd.Bool("facets"),
			Suggestions: cmd.Bool("suggestions"),
			Snippets:    true,
		})
		if err != nil {
			return err
		}
		printAdvanced(result)
		return nil
	}

	q := search.Query{
		Title:    cmd.String("title"),
		Content:  cmd.String("content"),
		Category: cmd.String("category"),
		Operator: search.Operator(cmd.String("operator")),
		Limit:    cmd.Int("limit"),
		Offset:   cmd.Int("offset"),
	}
	for _, t := range strings.Split(cmd.String("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			q.Tags = append(q.Tags, t)
		}
	}
	result, err := app.Engine.Search(q, search.SearchOptions{Snippets: true})
	if err != nil {
		return err
	}
	printResults(result.Results, result.TotalCount)
	return nil
}

func runLinks(ctx context.Context, cmd *cli.Command) error {
	app, err := oneShot(ctx, cmd)
	if err != nil {
		return err
	}
	result, err := app.Links.Query(links.QueryOptions{
		Type: links.QueryType(strings.ToLower(cmd.String("type"))),
		Path: cmd.String("path"),
	})
	if err != nil {
		return err
	}
	printJSON(result)
	return nil
}

func runStats(ctx context.Context, cmd *cli.Command) error {
	app, err := oneShot(ctx, cmd)
	if err != nil {
		return err
	}
	printJSON(map[string]any{
		"index": app.Engine.Stats(),
		"links": app.Links.Statistics(),
	})
	return nil
}

// oneShot wires the components and builds both indices for a single
// command invocation.
func oneShot(ctx context.Context, cmd *cli.Command) (*internal.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	app, err := internal.NewApp(cfg)
	if err != nil {
		return nil, err
	}
	if err := app.Build(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func printResults(items []search.ResultItem, total int) {
	fmt.Printf("Found %d results:\n", total)
	for i, item := range items {
		fmt.Printf("%d. %s (%d) — %s\n", i+1, item.Title, item.Score, item.Path)
		if item.Snippet != "" {
			fmt.Printf("   %s\n", item.Snippet)
		}
	}
}

func printAdvanced(result *search.AdvancedResult) {
	printResults(result.Results, result.TotalCount)
	for _, facet := range result.Facets {
		fmt.Printf("\n%s:\n", facet.Type)
		for _, v := range facet.Values {
			fmt.Printf("  %s: %d\n", v.Value, v.Count)
		}
	}
	if len(result.Suggestions) > 0 {
		fmt.Println("\nSuggestions:")
		for _, s := range result.Suggestions {
			fmt.Printf("  %s (%s)\n", s.Text, s.Source)
		}
	}
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}

func main() {
	globalFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file",
			DefaultText: "config/config.yaml",
			Value:       "config/config.yaml",
			Sources:     cli.EnvVars("PARAVAULT_CONFIG_FILE"),
		},
		&cli.StringFlag{
			Name:    "vault",
			Usage:   "Vault root directory (overrides config)",
			Sources: cli.EnvVars("PARAVAULT_ROOT"),
		},
	}
	pageFlags := []cli.Flag{
		&cli.IntFlag{Name: "limit", Usage: "Page size", Value: 10},
		&cli.IntFlag{Name: "offset", Usage: "Page offset"},
	}

	cmd := &cli.Command{
		Name:   "paravault",
		Usage:  "PARA-method Markdown corpus with relevance-ranked search and a wiki-link graph",
		Action: runServe,
		Flags:  globalFlags,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Build the indices and serve MCP tools over stdio",
				Action: runServe,
				Flags:  globalFlags,
			},
			{
				Name:   "build",
				Usage:  "Build both indices once and print their statistics",
				Action: runBuild,
				Flags:  globalFlags,
			},
			{
				Name:   "search",
				Usage:  "Search the corpus",
				Action: runSearch,
				Flags: append(append([]cli.Flag{
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Boolean query string"},
					&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
					&cli.StringFlag{Name: "title", Usage: "Title substring"},
					&cli.StringFlag{Name: "content", Usage: "Content substring"},
					&cli.StringFlag{Name: "category", Usage: "projects, areas, resources or archives"},
					&cli.StringFlag{Name: "operator", Usage: "AND or OR"},
					&cli.StringFlag{Name: "sort", Usage: "relevance, date, title or path"},
					&cli.BoolFlag{Name: "facets", Usage: "Print facet counts"},
					&cli.BoolFlag{Name: "suggestions", Usage: "Print suggestions"},
				}, pageFlags...), globalFlags...),
			},
			{
				Name:   "links",
				Usage:  "Query the wiki-link graph",
				Action: runLinks,
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "type", Usage: "forward, backlinks, orphaned, broken or all", Value: "all"},
					&cli.StringFlag{Name: "path", Usage: "Document path"},
				}, globalFlags...),
			},
			{
				Name:   "stats",
				Usage:  "Print statistics for both indices",
				Action: runStats,
				Flags:  globalFlags,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
