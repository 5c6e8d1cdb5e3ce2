package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/story-console/internal/logger"
	"github.com/jwebster45206/story-console/internal/services"
	"github.com/jwebster45206/story-console/pkg/generation"
)

var (
	ErrGenerationInFlight = errors.New("a generation is already in flight")
	ErrHandleConsumed     = errors.New("generation result already taken")
)

// Dispatcher runs generations in the background, one at a time.
type Dispatcher struct {
	llm  services.LLMService
	log  *slog.Logger
	busy atomic.Bool
}

// Handle is the caller's claim on the result of one dispatched generation.
type Handle struct {
	id       string
	result   chan generation.Result
	consumed atomic.Bool
	release  func()
}

// NewDispatcher creates a dispatcher over the given completion service
func NewDispatcher(llm services.LLMService, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		llm: llm,
		log: log,
	}
}

// Busy reports whether a dispatched generation has not been awaited yet.
func (d *Dispatcher) Busy() bool {
	return d.busy.Load()
}

// Dispatch starts exactly one background generation and returns immediately.
// It is refused with ErrGenerationInFlight until the previous handle is awaited.
func (d *Dispatcher) Dispatch(ctx context.Context, req generation.Request) (*Handle, error) {
	if !d.busy.CompareAndSwap(false, true) {
		return nil, ErrGenerationInFlight
	}

	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	h := &Handle{
		id:     req.ID,
		result: make(chan generation.Result, 1),
		release: func() {
			d.busy.Store(false)
		},
	}

	log := logger.WithRequestID(d.log, req.ID)
	log.Info("Dispatching generation", "mode", req.Mode)

	go func() {
		start := time.Now()
		result := d.llm.Generate(ctx, req).WithRequestID(req.ID)
		if result.OK() {
			log.Info("Generation completed", "duration", time.Since(start))
		} else {
			log.Warn("Generation failed",
				"kind", result.Failure.Kind,
				"reason", result.Failure.Reason,
				"duration", time.Since(start))
		}
		// One-slot buffer: the send never blocks, and the receive in Await
		// happens after the result is fully written.
		h.result <- result
	}()

	return h, nil
}

// ID returns the request id carried by this generation.
func (h *Handle) ID() string {
	return h.id
}

// Await blocks until the background generation has finished and returns its
// result. Only the first call receives it; later calls get a failure wrapping
// ErrHandleConsumed. Awaiting frees the dispatcher for the next request.
func (h *Handle) Await() generation.Result {
	if !h.consumed.CompareAndSwap(false, true) {
		return generation.Failed(generation.FailureTransport, ErrHandleConsumed.Error()).WithRequestID(h.id)
	}
	result := <-h.result
	h.release()
	return result
}
