package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jwebster45206/story-console/pkg/generation"
	"github.com/jwebster45206/story-console/pkg/textfilter"
	"github.com/ollama/ollama/api"
)

// OllamaService implements the LLMService interface for the Ollama API
type OllamaService struct {
	client    *api.Client
	baseURL   string
	modelName string
	timeout   time.Duration
	logger    *slog.Logger
}

// Ensure OllamaService implements LLMService interface
var _ LLMService = (*OllamaService)(nil)

// NewOllamaService creates a new Ollama service instance. A zero timeout leaves
// each generation bounded only by the caller's context.
func NewOllamaService(baseURL string, modelName string, timeout time.Duration, logger *slog.Logger) (*OllamaService, error) {
	base := strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/v1")
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ollama base url %q: %w", baseURL, err)
	}

	return &OllamaService{
		client:    api.NewClient(parsed, &http.Client{}),
		baseURL:   base,
		modelName: modelName,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

// InitModel checks that Ollama answers and pulls the model if it is missing
func (s *OllamaService) InitModel(ctx context.Context, modelName string) error {
	s.logger.Info("Initializing LLM model", "model", modelName, "url", s.baseURL)

	if err := s.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama service is not ready: %w", err)
	}

	ready, err := s.isModelReady(ctx, modelName)
	if err != nil {
		return fmt.Errorf("failed to check model readiness: %w", err)
	}

	if ready {
		s.logger.Info("Model already available", "model", modelName)
		return nil
	}

	s.logger.Info("Model not found, pulling it", "model", modelName)
	if err := s.pullModel(ctx, modelName); err != nil {
		return fmt.Errorf("failed to pull model: %w", err)
	}
	s.logger.Info("Model pulled successfully", "model", modelName)
	return nil
}

// Generate sends the prompt with the request's schema as the required output format
func (s *OllamaService) Generate(ctx context.Context, req generation.Request) generation.Result {
	log := s.logger.With("request_id", req.ID, "model", s.modelName)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	stream := false
	genReq := &api.GenerateRequest{
		Model:  s.modelName,
		Prompt: req.Prompt,
		Stream: &stream,
		Format: req.Schema,
	}

	log.Debug("Making Ollama generate request",
		"prompt_bytes", len(req.Prompt),
		"mode", req.Mode)

	start := time.Now()
	var (
		body  strings.Builder
		final api.GenerateResponse
	)
	err := s.client.Generate(ctx, genReq, func(r api.GenerateResponse) error {
		body.WriteString(r.Response)
		final = r
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		var statusErr api.StatusError
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			log.Error("Ollama request timed out", "timeout", s.timeout, "duration", duration)
		case errors.As(err, &statusErr):
			log.Error("Ollama API returned error",
				"status_code", statusErr.StatusCode,
				"error_message", statusErr.ErrorMessage,
				"duration", duration)
		default:
			log.Error("Ollama request failed", "error", err, "duration", duration)
		}
		return generation.Failed(generation.FailureTransport, err.Error()).WithRequestID(req.ID)
	}

	result := generation.Decode(req.Mode, []byte(body.String()))
	if !result.OK() {
		log.Error("Failed to decode Ollama response",
			"reason", result.Failure.Reason,
			"response_body", body.String())
		return result.WithRequestID(req.ID)
	}

	result.Story = textfilter.CleanText(result.Story)
	result.Options = textfilter.CleanLines(result.Options)

	log.Info("Ollama generation finished",
		"duration", duration,
		"prompt_tokens", final.PromptEvalCount,
		"completion_tokens", final.EvalCount,
		"options", len(result.Options))

	return result.WithRequestID(req.ID)
}

// isModelReady checks if the specified model is available locally
func (s *OllamaService) isModelReady(ctx context.Context, modelName string) (bool, error) {
	resp, err := s.client.List(ctx)
	if err != nil {
		return false, err
	}

	for _, model := range resp.Models {
		if model.Name == modelName || model.Name == modelName+":latest" {
			return true, nil
		}
	}
	return false, nil
}

// pullModel pulls a model from the Ollama registry
func (s *OllamaService) pullModel(ctx context.Context, modelName string) error {
	lastStatus := ""
	return s.client.Pull(ctx, &api.PullRequest{Model: modelName}, func(p api.ProgressResponse) error {
		if p.Status != lastStatus {
			s.logger.Debug("Pull progress", "model", modelName, "status", p.Status)
			lastStatus = p.Status
		}
		return nil
	})
}
