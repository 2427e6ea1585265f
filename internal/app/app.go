// Package app wires configuration, storage, providers and services into the
// set of driving ports used by the CLI and the MCP server.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/env"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/pdf"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/plaintext"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

// Store bundles the persistence ports of one backend.
type Store struct {
	Documents driven.DocumentStore
	Index     driven.VectorIndex
	QueryLogs driven.QueryLogStore
	Close     func() error
}

// OpenStore opens the backend selected by settings.
func OpenStore(settings domain.StorageSettings) (*Store, error) {
	switch settings.Backend {
	case domain.StorageBackendMemory:
		docs := memory.NewDocumentStore()
		return &Store{
			Documents: docs,
			Index:     docs,
			QueryLogs: memory.NewQueryLogStore(),
			Close:     func() error { return nil },
		}, nil

	case domain.StorageBackendSQLite:
		st, err := sqlite.NewStore(settings.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		logger.Debug("sqlite store at %s", st.Path())
		return &Store{
			Documents: st.DocumentStore(),
			Index:     st.VectorIndex(),
			QueryLogs: st.QueryLogStore(),
			Close:     st.Close,
		}, nil

	case domain.StorageBackendPostgres:
		st, err := postgres.NewStore(settings.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return &Store{
			Documents: st,
			Index:     st,
			QueryLogs: st,
			Close:     st.Close,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, settings.Backend)
	}
}

// Bootstrap builds the services for one CLI invocation.
func Bootstrap(_ context.Context, opts cli.Options) (*cli.Services, error) {
	if err := env.Load(); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	configStore, err := file.NewConfigStore(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, env.Overrides())

	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", configStore.Path(), err)
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return nil, fmt.Errorf("opening prompts: %w", err)
	}

	store, err := OpenStore(settings.Storage)
	if err != nil {
		return nil, err
	}

	var finish func(svc *cli.Services) *cli.Services
	var reload func(ctx context.Context) (*cli.Services, error)
	reload = func(_ context.Context) (*cli.Services, error) {
		if err := settingsService.Reload(); err != nil {
			return nil, fmt.Errorf("reloading config: %w", err)
		}
		prompts.Reload()
		fresh, err := settingsService.Get()
		if err != nil {
			return nil, err
		}
		if err := fresh.Validate(); err != nil {
			return nil, err
		}
		if fresh.Storage != settings.Storage {
			logger.Warn("storage settings changed; restart to apply")
		}
		return finish(Assemble(fresh, store, prompts, settingsService)), nil
	}

	finish = func(svc *cli.Services) *cli.Services {
		svc.ConfigPath = configStore.Path()
		svc.Reload = reload
		release := svc.Release
		svc.Close = func() error {
			return errors.Join(release(), store.Close())
		}
		return svc
	}

	return finish(Assemble(settings, store, prompts, settingsService)), nil
}

// Assemble builds every service over store from settings.
// A provider that is not configured is left out; the gateways then fail
// with the matching unavailability error and health reports it.
func Assemble(
	settings *domain.AppSettings,
	store *Store,
	prompts driven.PromptStore,
	settingsService *services.SettingsService,
) *cli.Services {
	embedder, completion := providers(settings)

	embeddingGateway := services.NewEmbeddingGateway(embedder, settings.Embedding, settings.Provider)
	completionGateway := services.NewCompletionGateway(completion, settings.LLM, settings.Provider)

	search := services.NewSearchService(store.Documents, store.Index, embeddingGateway, settings.Retrieval)
	assembler := services.NewAssembler(completionGateway, prompts, settings.LLM)
	documents := services.NewDocumentService(
		store.Documents,
		embeddingGateway,
		chunker.FromSettings(settings.Chunking),
		settings.Ingest,
		pdf.New(),
		plaintext.New(),
	)

	return &cli.Services{
		Answer:   services.NewAnswerService(search, assembler, store.QueryLogs, settings.Retrieval),
		Search:   search,
		Document: documents,
		QueryLog: services.NewQueryLogService(store.QueryLogs),
		Settings: settingsService,
		Health:   services.NewHealthService(store.Documents, embedder, completion),
		Release: func() error {
			return errors.Join(embeddingGateway.Close(), completionGateway.Close())
		},
	}
}

// providers returns the raw adapters, or untyped nils for those that cannot
// be built. Health probes the raw adapters so a nil reads as not configured.
func providers(settings *domain.AppSettings) (driven.EmbeddingService, driven.CompletionService) {
	embedder, err := ai.CreateEmbeddingService(settings.Embedding)
	if err != nil {
		logEmbeddingProblem(err)
		embedder = nil
	}
	completion, err := ai.CreateCompletionService(settings.LLM)
	if err != nil {
		logger.Debug("completion provider: %v", err)
		completion = nil
	}
	return embedder, completion
}

func logEmbeddingProblem(err error) {
	if errors.Is(err, ai.ErrNotConfigured) {
		logger.Debug("embedding provider: %v", err)
		return
	}
	logger.Warn("embedding provider: %v", err)
}
