// Command gumshoe is a retrieval-grounded character dialogue CLI.
// main is the composition root: it builds driven adapters from settings
// and wires them into the core services behind the driving ports.
package main

import (
	"fmt"
	"os"

	"github.com/wastelandworks/gumshoe/internal/adapters/driven/config/file"
	csvcorpus "github.com/wastelandworks/gumshoe/internal/adapters/driven/corpus/csv"
	localembed "github.com/wastelandworks/gumshoe/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/wastelandworks/gumshoe/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/wastelandworks/gumshoe/internal/adapters/driven/embedding/openai"
	sqliteindex "github.com/wastelandworks/gumshoe/internal/adapters/driven/index/sqlite"
	anthropicllm "github.com/wastelandworks/gumshoe/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/wastelandworks/gumshoe/internal/adapters/driven/llm/ollama"
	openaillm "github.com/wastelandworks/gumshoe/internal/adapters/driven/llm/openai"
	"github.com/wastelandworks/gumshoe/internal/adapters/driving/cli"
	"github.com/wastelandworks/gumshoe/internal/core/domain"
	"github.com/wastelandworks/gumshoe/internal/core/ports/driven"
	"github.com/wastelandworks/gumshoe/internal/core/services"
	"github.com/wastelandworks/gumshoe/internal/logger"
)

// version is injected at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settingsStore, err := file.NewSettingsStore("")
	if err != nil {
		return fmt.Errorf("opening settings: %w", err)
	}
	settings := settingsStore.Get()

	personaStore, err := file.NewPersonaStore("")
	if err != nil {
		return fmt.Errorf("opening persona store: %w", err)
	}
	persona, err := personaStore.Load()
	if err != nil {
		return fmt.Errorf("loading persona: %w", err)
	}

	embedder, err := buildEmbedder(settings)
	if err != nil {
		return fmt.Errorf("configuring embedder: %w", err)
	}
	defer embedder.Close() //nolint:errcheck // best-effort shutdown

	index, err := sqliteindex.Open(settings.DataDir)
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer index.Close() //nolint:errcheck // best-effort shutdown

	registry, err := buildRegistry(settings)
	if err != nil {
		return fmt.Errorf("configuring backends: %w", err)
	}
	defer registry.Close() //nolint:errcheck // best-effort shutdown

	dialogue := services.NewDialogueService(
		csvcorpus.NewLoader(settings.CorpusPath),
		embedder,
		index,
		registry,
		persona,
		services.DialogueConfig{
			TopK:         settings.TopK,
			MinScore:     settings.MinScore,
			MaxSentences: settings.MaxSentences,
			Assembler: services.AssemblerConfig{
				MaxPromptChars: settings.MaxPromptChars,
				MaxExamples:    settings.MaxExamples,
				HistoryTurns:   settings.HistoryTurns,
				MaxTokens:      settings.MaxTokens,
				Temperature:    settings.Temperature,
			},
		},
	)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Dialogue: dialogue,
		Registry: registry,
		Settings: settingsStore,
		Persona:  personaStore,
	})

	return cli.Execute()
}

// buildEmbedder constructs the configured embedding service.
func buildEmbedder(settings domain.Settings) (driven.EmbeddingService, error) {
	switch settings.Embedder {
	case domain.EmbedderLocal:
		return localembed.NewEmbeddingService(0), nil
	case domain.EmbedderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			Model: settings.EmbedderModel,
		}), nil
	case domain.EmbedderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey: settings.OpenAIKey,
			Model:  settings.EmbedderModel,
		})
	default:
		return nil, fmt.Errorf("unknown embedder %q", settings.Embedder)
	}
}

// buildRegistry registers every usable backend and selects the
// configured one. Hosted backends without credentials are skipped, not
// fatal: the engine degrades to whatever is registered.
func buildRegistry(settings domain.Settings) (*services.BackendRegistry, error) {
	registry := services.NewBackendRegistry()

	// Model and endpoint overrides apply only to the backend they were
	// configured for; the others keep their provider defaults.
	override := func(kind domain.BackendKind) (model, endpoint string) {
		if settings.Backend == kind {
			return settings.BackendModel, settings.BackendEndpoint
		}
		return "", ""
	}

	model, endpoint := override(domain.BackendOllama)
	registry.Register(ollamallm.NewBackend(ollamallm.Config{
		BaseURL: endpoint,
		Model:   model,
	}))

	if settings.OpenAIKey != "" {
		model, endpoint = override(domain.BackendOpenAI)
		openaiBackend, err := openaillm.NewBackend(openaillm.Config{
			APIKey:  settings.OpenAIKey,
			BaseURL: endpoint,
			Model:   model,
		})
		if err != nil {
			return nil, err
		}
		registry.Register(openaiBackend)
	}

	if settings.AnthropicKey != "" {
		model, endpoint = override(domain.BackendAnthropic)
		anthropicBackend, err := anthropicllm.NewBackend(anthropicllm.Config{
			APIKey:  settings.AnthropicKey,
			BaseURL: endpoint,
			Model:   model,
		})
		if err != nil {
			return nil, err
		}
		registry.Register(anthropicBackend)
	}

	if err := registry.Use(settings.Backend.String()); err != nil {
		logger.Warn("Configured backend %q unavailable, using %q",
			settings.Backend, registry.CurrentName())
	}
	return registry, nil
}
