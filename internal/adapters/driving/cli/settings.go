package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

var errNoSettings = errors.New("settings service not configured")

var (
	embedProviderFlag string
	embedModelFlag    string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure storage, registry, search and embedding settings.

Settings are read from ~/.alexandria/config.toml. Environment variables such as
EMBEDDING_PROVIDER, VOYAGE_API_KEY and OLLAMA_URL take precedence.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Select the embedding provider, model and API key, then validate them.

Without --provider the choices are prompted for. An API key, when the
provider needs one, is always read from the terminal.`,
	Example: `  alexandria settings embedding
  alexandria settings embedding --provider ollama --model nomic-embed-text`,
	RunE: runSettingsEmbedding,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the embedding provider is reachable",
	RunE:  runSettingsValidate,
}

func init() {
	settingsEmbeddingCmd.Flags().StringVar(&embedProviderFlag, "provider", "", "voyage, ollama, openai or transformers")
	settingsEmbeddingCmd.Flags().StringVar(&embedModelFlag, "model", "", "model name (default depends on provider)")

	settingsCmd.AddCommand(settingsShowCmd, settingsEmbeddingCmd, settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingsSection is one bracketed block of `settings show`.
type settingsSection struct {
	title string
	rows  [][2]string
}

func describeSettings(s *domain.AppSettings) []settingsSection {
	emb := s.Embedding
	embedding := settingsSection{title: "Embedding", rows: [][2]string{
		{"Provider", emb.Provider.Description()},
		{"Model", emb.Model},
	}}
	if emb.BaseURL != "" {
		embedding.rows = append(embedding.rows, [2]string{"Base URL", emb.BaseURL})
	}
	if emb.Dimensions > 0 {
		embedding.rows = append(embedding.rows, [2]string{"Dimensions", strconv.Itoa(emb.Dimensions)})
	}
	if emb.Provider.RequiresAPIKey() {
		key := "(not set)"
		if emb.APIKey != "" {
			key = maskAPIKey(emb.APIKey)
		}
		embedding.rows = append(embedding.rows, [2]string{"API Key", key})
	}
	status := "configured"
	if !emb.IsConfigured() {
		status = "not configured"
	}
	embedding.rows = append(embedding.rows, [2]string{"Status", status})

	return []settingsSection{
		{title: "Storage", rows: [][2]string{{"Database", s.Storage.Path}, {"Registry", s.Registry.Path}}},
		{title: "Search", rows: [][2]string{{"Limit", strconv.Itoa(s.Search.Limit)}}},
		embedding,
	}
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(headerStyle.Render("Current Settings"))
	for _, sec := range describeSettings(settings) {
		cmd.Printf("\n[%s]\n", sec.title)
		for _, row := range sec.rows {
			cmd.Printf("  %s: %s\n", row[0], row[1])
		}
	}

	if embeddingErr != nil {
		cmd.Printf("\nWarning: %v\n", embeddingErr)
		cmd.Println("Run 'alexandria settings embedding' to fix the configuration.")
	}
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	p := &prompter{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.OutOrStdout()}

	provider, err := chooseProvider(p, embedProviderFlag)
	if err != nil {
		return err
	}

	defaultModel := domain.DefaultEmbeddingModels()[provider]
	model := embedModelFlag
	if model == "" && embedProviderFlag == "" {
		model = p.ask(fmt.Sprintf("Enter model name [%s]: ", defaultModel))
	}
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		apiKey = p.secret("Enter API key: ")
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	if configValidator != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		cmd.Print("Validating configuration... ")
		if err := configValidator.ValidateEmbedding(cmd.Context(), settings.Embedding); err != nil {
			cmd.Println(errorStyle.Render("FAILED"))
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		cmd.Println(successStyle.Render("OK"))
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

// chooseProvider resolves --provider, or shows a numbered menu when it is empty.
func chooseProvider(p *prompter, flag string) (domain.EmbeddingProvider, error) {
	if flag != "" {
		provider := domain.EmbeddingProvider(strings.ToLower(flag))
		if !provider.IsValid() {
			return "", fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, flag)
		}
		return provider, nil
	}

	providers := domain.AllEmbeddingProviders()
	fmt.Fprintln(p.out, "Select Embedding Provider")
	for i, provider := range providers {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, provider.Description())
	}
	choice := parseChoice(p.ask("\nEnter choice [1]: "), len(providers), 1)
	return providers[choice-1], nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil || configValidator == nil {
		return errNoSettings
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Printf("Validating %s... ", settings.Embedding.Provider)
	if err := configValidator.ValidateEmbedding(cmd.Context(), settings.Embedding); err != nil {
		cmd.Println(errorStyle.Render("FAILED"))
		return err
	}
	cmd.Println(successStyle.Render("OK"))
	return nil
}

// prompter reads answers line by line from in and writes prompts to out.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *prompter) ask(prompt string) string {
	fmt.Fprint(p.out, prompt)
	line, _ := p.in.ReadString('\n') //nolint:errcheck // EOF reads as an empty answer
	return strings.TrimSpace(line)
}

// secret disables echo when stdin is a terminal with nothing buffered,
// otherwise it falls back to ask.
func (p *prompter) secret(prompt string) string {
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) && p.in.Buffered() == 0 {
		fmt.Fprint(p.out, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err == nil {
			return strings.TrimSpace(string(b))
		}
	}
	return p.ask(prompt)
}

// parseChoice maps a 1-based menu answer to an index, falling back to def.
func parseChoice(input string, maxVal, def int) int {
	val, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || val < 1 || val > maxVal {
		return def
	}
	return val
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
