// Package cli implements the sercha-rag command line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services are the driving ports the commands call.
type Services struct {
	Answer   driving.AnswerService
	Search   driving.SearchService
	Document driving.DocumentService
	QueryLog driving.QueryLogService
	Settings driving.SettingsService
	Health   driving.HealthService

	// ConfigPath is the settings file watched by long-running commands.
	ConfigPath string

	// Reload rebuilds the services after a settings change.
	Reload func(ctx context.Context) (*Services, error)

	// Release closes the providers built for these services. The store
	// stays open so a reload can reuse it.
	Release func() error

	// Close releases the providers and the store.
	Close func() error
}

// Options are the global flags handed to the bootstrap function.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// Bootstrap builds the services once global flags are parsed.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

var (
	answerService   driving.AnswerService
	searchService   driving.SearchService
	documentService driving.DocumentService
	queryLogService driving.QueryLogService
	settingsService driving.SettingsService
	healthService   driving.HealthService

	configPath     string
	reloadServices  func(ctx context.Context) (*Services, error)
	releaseServices func() error
	closeServices   func() error

	bootstrap Bootstrap

	flagVerbose bool
	flagConfig  string
)

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "sercha-rag",
	Short: "Ask questions about your documents",
	Long: `sercha-rag answers questions from the documents you ingest.

Documents are split into passages and embedded. Each question is embedded,
matched against the stored passages by cosine similarity, and answered by a
language model using only the passages that clear the relevance threshold.
When nothing relevant is found the question is refused instead of guessed.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Print pipeline steps and timings")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.sercha-rag/config.toml)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetBootstrap registers the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs svc as the services used by every command.
func SetServices(svc *Services) {
	answerService = svc.Answer
	searchService = svc.Search
	documentService = svc.Document
	queryLogService = svc.QueryLog
	settingsService = svc.Settings
	healthService = svc.Health
	configPath = svc.ConfigPath
	reloadServices = svc.Reload
	releaseServices = svc.Release
	closeServices = svc.Close
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)
	if bootstrap == nil || cmd.Annotations[skipBootstrap] != "" {
		return nil
	}
	svc, err := bootstrap(commandContext(cmd), Options{ConfigPath: flagConfig, Verbose: flagVerbose})
	if err != nil {
		return fmt.Errorf("starting: %w", err)
	}
	SetServices(svc)
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
