package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jwebster45206/story-console/pkg/generation"
	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// generateHandler answers /api/generate with body as the model's response text.
func generateHandler(t *testing.T, body string, seen *api.GenerateRequest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.GenerateResponse{
			Model:    "llama3.2",
			Response: body,
			Done:     true,
		})
	}
}

func newTestOllama(t *testing.T, handler http.Handler, timeout time.Duration) *OllamaService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewOllamaService(srv.URL+"/", "llama3.2", timeout, testLogger())
	require.NoError(t, err)
	return svc
}

func TestNewOllamaService_TrimsBaseURL(t *testing.T) {
	svc, err := NewOllamaService("http://localhost:11434/v1/", "llama3.2", 0, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", svc.baseURL)

	_, err = NewOllamaService("://bad", "llama3.2", 0, testLogger())
	assert.Error(t, err)
}

func TestOllamaGenerate_Success(t *testing.T) {
	var seen api.GenerateRequest
	body := `{"story":"You wake in a desert.","health":90,"options":["Walk north","Dig"]}`
	svc := newTestOllama(t, generateHandler(t, body, &seen), time.Second)

	req := generation.NewRequest(generation.HealthModeAbsolute, "Begin the story.")
	req.ID = "req-1"
	result := svc.Generate(context.Background(), req)

	require.True(t, result.OK(), "unexpected failure: %v", result.Err())
	assert.Equal(t, "req-1", result.RequestID)
	assert.Equal(t, "You wake in a desert.", result.Story)
	assert.Equal(t, 90, result.Health)
	assert.Equal(t, []string{"Walk north", "Dig"}, result.Options)

	assert.Equal(t, "llama3.2", seen.Model)
	assert.Equal(t, "Begin the story.", seen.Prompt)
	require.NotNil(t, seen.Stream)
	assert.False(t, *seen.Stream)
	assert.JSONEq(t, string(generation.Schema(generation.HealthModeAbsolute)), string(seen.Format))
}

func TestOllamaGenerate_DeltaMode(t *testing.T) {
	var seen api.GenerateRequest
	body := `{"story":"A scorpion stings you.","health_difference":-15,"options":["Rest"]}`
	svc := newTestOllama(t, generateHandler(t, body, &seen), time.Second)

	result := svc.Generate(context.Background(), generation.NewRequest(generation.HealthModeDelta, "Continue."))

	require.True(t, result.OK())
	assert.Equal(t, generation.HealthModeDelta, result.Mode)
	assert.Equal(t, -15, result.Health)
	assert.JSONEq(t, string(generation.Schema(generation.HealthModeDelta)), string(seen.Format))
}

func TestOllamaGenerate_SanitizesText(t *testing.T) {
	body := "{\"story\":\"  The dunes\\u001b[31m shift.\\r\\n\",\"health\":80,\"options\":[\"  Walk \\t north \",\"\\u0007\",\"Dig\"]}"
	svc := newTestOllama(t, generateHandler(t, body, nil), time.Second)

	result := svc.Generate(context.Background(), generation.NewRequest(generation.HealthModeAbsolute, "Continue."))

	require.True(t, result.OK())
	assert.Equal(t, "The dunes shift.", result.Story)
	assert.Equal(t, []string{"Walk north", "Dig"}, result.Options)
}

func TestOllamaGenerate_SchemaFailure(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "Once upon a time"},
		{"missing options", `{"story":"s","health":10}`},
		{"wrong health field", `{"story":"s","health_difference":10,"options":[]}`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestOllama(t, generateHandler(t, tt.body, nil), time.Second)
			req := generation.NewRequest(generation.HealthModeAbsolute, "Continue.")
			req.ID = "req-2"

			result := svc.Generate(context.Background(), req)

			require.False(t, result.OK())
			assert.Equal(t, generation.FailureSchema, result.Failure.Kind)
			assert.True(t, errors.Is(result.Err(), generation.ErrSchema))
			assert.Equal(t, "req-2", result.RequestID)
		})
	}
}

func TestOllamaGenerate_TransportFailure(t *testing.T) {
	t.Run("error status", func(t *testing.T) {
		svc := newTestOllama(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"model 'llama3.2' not found"}`))
		}), time.Second)

		result := svc.Generate(context.Background(), generation.NewRequest(generation.HealthModeAbsolute, "x"))
		require.False(t, result.OK())
		assert.Equal(t, generation.FailureTransport, result.Failure.Kind)
		assert.True(t, errors.Is(result.Err(), generation.ErrTransport))
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		svc, err := NewOllamaService(url, "llama3.2", time.Second, testLogger())
		require.NoError(t, err)

		result := svc.Generate(context.Background(), generation.NewRequest(generation.HealthModeAbsolute, "x"))
		require.False(t, result.OK())
		assert.Equal(t, generation.FailureTransport, result.Failure.Kind)
	})

	t.Run("timeout", func(t *testing.T) {
		svc := newTestOllama(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}), 50*time.Millisecond)

		start := time.Now()
		result := svc.Generate(context.Background(), generation.NewRequest(generation.HealthModeAbsolute, "x"))
		require.False(t, result.OK())
		assert.Equal(t, generation.FailureTransport, result.Failure.Kind)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestOllamaInitModel(t *testing.T) {
	tests := []struct {
		name       string
		models     []string
		modelName  string
		expectPull bool
	}{
		{"already present", []string{"llama3.2:latest"}, "llama3.2", false},
		{"exact tag", []string{"llama3.2:1b"}, "llama3.2:1b", false},
		{"missing", []string{"mistral:latest"}, "llama3.2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pulled atomic.Bool
			mux := http.NewServeMux()
			mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
				resp := api.ListResponse{}
				for _, m := range tt.models {
					resp.Models = append(resp.Models, api.ListModelResponse{Name: m, Model: m})
				}
				_ = json.NewEncoder(w).Encode(resp)
			})
			mux.HandleFunc("/api/pull", func(w http.ResponseWriter, r *http.Request) {
				var req api.PullRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, tt.modelName, req.Model)
				pulled.Store(true)
				enc := json.NewEncoder(w)
				_ = enc.Encode(api.ProgressResponse{Status: "pulling manifest"})
				_ = enc.Encode(api.ProgressResponse{Status: "success"})
			})

			svc := newTestOllama(t, mux, time.Second)
			require.NoError(t, svc.InitModel(context.Background(), tt.modelName))
			assert.Equal(t, tt.expectPull, pulled.Load())
		})
	}
}

func TestOllamaInitModel_NotReachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	svc, err := NewOllamaService(url, "llama3.2", time.Second, testLogger())
	require.NoError(t, err)

	err = svc.InitModel(context.Background(), "llama3.2")
	assert.Error(t, err)
}
