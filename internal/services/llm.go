package services

import (
	"context"

	"github.com/jwebster45206/story-console/pkg/generation"
)

// LLMService defines the interface for interacting with the completion service
type LLMService interface {
	// InitModel makes sure the model is available before the first generation
	InitModel(ctx context.Context, modelName string) error

	// Generate sends one request and returns a validated result. Transport and
	// schema problems come back as a failed Result, never as a panic.
	Generate(ctx context.Context, req generation.Request) generation.Result
}
