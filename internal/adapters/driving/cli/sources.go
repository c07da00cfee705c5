package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// unknownAPIError names the API a command was given when no such source exists.
type unknownAPIError struct {
	name string
}

func (e *unknownAPIError) Error() string {
	return fmt.Sprintf("API %q not found. Run 'alexandria sources list' to see indexed APIs.", e.name)
}

func (e *unknownAPIError) Unwrap() error { return domain.ErrSourceNotFound }

// nameSource replaces a bare source-not-found error with one naming the API.
func nameSource(name string, err error) error {
	if errors.Is(err, domain.ErrSourceNotFound) {
		return &unknownAPIError{name: name}
	}
	return err
}

var sourcesCmd = &cobra.Command{
	Use:     "sources",
	Aliases: []string{"source"},
	Short:   "Inspect and manage indexed sources",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed sources",
	Args:  cobra.NoArgs,
	RunE:  runSourcesList,
}

var sourcesEndpointsCmd = &cobra.Command{
	Use:   "endpoints [name]",
	Short: "List the endpoints of an API",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesEndpoints,
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove a source and all of its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesRemove,
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesEndpointsCmd)
	sourcesCmd.AddCommand(sourcesRemoveCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	sources, err := sourceService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No sources indexed. Run 'alexandria ingest' to add one.")
		return nil
	}

	cmd.Println(headerStyle.Render("Sources:"))
	for _, src := range sources {
		label := src.Name
		if src.Version != "" {
			label += " v" + src.Version
		}

		var paths []string
		if src.SpecPath != "" {
			paths = append(paths, "spec: "+src.SpecPath)
		}
		if src.DocsPath != "" {
			paths = append(paths, "docs: "+src.DocsPath)
		}

		cmd.Printf("  %s\n", titleStyle.Render(label))
		if len(paths) > 0 {
			cmd.Printf("      %s\n", metaStyle.Render(strings.Join(paths, ", ")))
		}
		cmd.Printf("      %s\n", metaStyle.Render("updated "+src.UpdatedAt.Local().Format("2006-01-02 15:04")))
	}
	return nil
}

func runSourcesEndpoints(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	name := args[0]
	endpoints, err := sourceService.Endpoints(cmd.Context(), name)
	if err != nil {
		return nameSource(name, err)
	}

	if len(endpoints) == 0 {
		cmd.Printf("No endpoints found for %q.\n", name)
		return nil
	}

	cmd.Println(headerStyle.Render(name + " endpoints:"))
	for _, c := range endpoints {
		method := strings.ToUpper(c.MetadataString("method"))
		path := c.MetadataString("path")
		cmd.Printf("  %-7s %s\n", kindStyle.Render(method), path)
	}
	return nil
}

func runSourcesRemove(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	name := args[0]
	if err := sourceService.Remove(cmd.Context(), name); err != nil {
		return nameSource(name, err)
	}

	cmd.Printf("Removed %s.\n", name)
	return nil
}
