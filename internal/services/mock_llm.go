package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/story-console/pkg/generation"
)

// MockResponse is the canned result returned when no GenerateFunc is set.
var MockResponse = generation.Success(
	generation.HealthModeAbsolute,
	"You wake in a desert.",
	90,
	[]string{"Walk north", "Dig"},
)

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	InitModelFunc func(ctx context.Context, modelName string) error
	GenerateFunc  func(ctx context.Context, req generation.Request) generation.Result

	// Track calls for testing
	InitModelCalls []string
	GenerateCalls  []generation.Request

	mu sync.Mutex // protects all fields above
}

// Ensure MockLLMAPI implements LLMService interface
var _ LLMService = (*MockLLMAPI)(nil)

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		InitModelCalls: make([]string, 0),
		GenerateCalls:  make([]generation.Request, 0),
	}
}

// InitModel mocks model initialization
func (m *MockLLMAPI) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	m.InitModelCalls = append(m.InitModelCalls, modelName)
	fn := m.InitModelFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, modelName)
	}

	// Default behavior - success
	return nil
}

// Generate mocks a generation. The hook runs outside the lock so it may block.
func (m *MockLLMAPI) Generate(ctx context.Context, req generation.Request) generation.Result {
	m.mu.Lock()
	m.GenerateCalls = append(m.GenerateCalls, req)
	fn := m.GenerateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req).WithRequestID(req.ID)
	}

	return MockResponse.WithRequestID(req.ID)
}

// SetInitModelError sets up the mock to return an error on InitModel
func (m *MockLLMAPI) SetInitModelError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelFunc = func(ctx context.Context, modelName string) error {
		return err
	}
}

// SetGenerateResult sets up the mock to return a fixed result on Generate
func (m *MockLLMAPI) SetGenerateResult(result generation.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, req generation.Request) generation.Result {
		return result
	}
}

// SetGenerateFailure sets up the mock to fail every Generate with the given kind
func (m *MockLLMAPI) SetGenerateFailure(kind generation.FailureKind, reason string) {
	m.SetGenerateResult(generation.Failed(kind, reason))
}

// Reset clears all call tracking
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.GenerateCalls = make([]generation.Request, 0)
}

// GetCalls returns a copy of the call tracking data in a thread-safe way
func (m *MockLLMAPI) GetCalls() ([]string, []generation.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	initCalls := make([]string, len(m.InitModelCalls))
	copy(initCalls, m.InitModelCalls)

	genCalls := make([]generation.Request, len(m.GenerateCalls))
	copy(genCalls, m.GenerateCalls)

	return initCalls, genCalls
}
