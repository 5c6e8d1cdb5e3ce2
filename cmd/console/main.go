package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/story-console/internal/config"
	"github.com/jwebster45206/story-console/internal/logger"
	"github.com/jwebster45206/story-console/internal/services"
	"github.com/jwebster45206/story-console/internal/worker"
	"github.com/jwebster45206/story-console/pkg/state"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out, closeLog, err := logger.OpenOutput(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = closeLog() // Ignore error in defer
	}()
	log := logger.Setup(cfg, out)

	log.Info("Starting story console",
		"model", cfg.ModelName,
		"ollama_url", cfg.OllamaBaseURL,
		"health_mode", cfg.HealthMode)

	llm, err := services.NewOllamaService(cfg.OllamaBaseURL, cfg.ModelName, cfg.GenerationTimeout, log)
	if err != nil {
		return fmt.Errorf("failed to create LLM service: %w", err)
	}

	// The game still starts if the model can't be prepared; each generation
	// then fails on its own and says so in the story.
	initCtx, cancelInit := context.WithTimeout(context.Background(), cfg.StartupTimeout)
	if err := llm.InitModel(initCtx, cfg.ModelName); err != nil {
		logger.WithError(log, err).Warn("LLM model not ready", "model", cfg.ModelName)
	}
	cancelInit()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := state.NewNarrativeState(cfg.HealthMode)
	dispatcher := worker.NewDispatcher(llm, log)

	p := tea.NewProgram(NewConsoleUI(ctx, cfg, store, dispatcher, log),
		tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	log.Info("Story console stopped", "health", store.Snapshot().Health)
	return nil
}
