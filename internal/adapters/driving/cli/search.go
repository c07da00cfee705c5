package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
	searchAPI   string
	searchTypes []string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documentation",
	Long: `Performs hybrid search across all indexed API specs and docs.
Combines keyword (BM25) and semantic (vector) search with Reciprocal Rank
Fusion. Without an embedding provider, search runs on keywords alone.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchAPI, "api", "", "restrict results to one API")
	searchCmd.Flags().StringSliceVarP(&searchTypes, "type", "t", nil,
		"restrict results to chunk types (overview, endpoint, schema, glossary, use-case, guide)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx := cmd.Context()
	opts := domain.SearchOptions{
		Limit: searchLimit,
	}

	if searchAPI != "" {
		if sourceService == nil {
			return errors.New("source service not configured")
		}
		src, err := sourceService.GetByName(ctx, searchAPI)
		if err != nil {
			return nameSource(searchAPI, err)
		}
		opts.SourceID = src.ID
	}

	if len(searchTypes) > 0 {
		kinds, err := domain.ParseChunkKinds(searchTypes)
		if err != nil {
			return err
		}
		opts.Kinds = kinds
	}

	results, err := searchService.Search(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

// searchResultJSON is the --json shape of one hit.
type searchResultJSON struct {
	ID       string         `json:"id"`
	Source   string         `json:"source"`
	Kind     string         `json:"kind"`
	Title    string         `json:"title"`
	Score    float64        `json:"score"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	out := make([]searchResultJSON, len(results))
	for i, r := range results {
		out[i] = searchResultJSON{
			ID:       r.Chunk.ID,
			Source:   r.SourceName,
			Kind:     r.Chunk.Kind.String(),
			Title:    r.Chunk.Title,
			Score:    r.Score,
			Content:  r.Chunk.Content,
			Metadata: r.Chunk.Metadata,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	width := terminalWidth()

	cmd.Println(headerStyle.Render("Results:"))
	cmd.Println()
	for i := range results {
		r := results[i]
		cmd.Printf("  [%d] %s %s\n", i+1, titleStyle.Render(r.Chunk.Title), metaStyle.Render(fmt.Sprintf("(%.4f)", r.Score)))

		source := r.SourceName
		if source == "" {
			source = r.Chunk.SourceID
		}
		cmd.Printf("      %s · %s\n", kindStyle.Render(r.Chunk.Kind.String()), source)

		if s := snippet(r.Chunk.Content); s != "" {
			cmd.Println(wrap(s, width, "      "))
		}
		cmd.Println()
	}

	return nil
}
