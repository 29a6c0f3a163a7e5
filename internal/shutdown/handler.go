// Package shutdown runs registered cleanup steps once, on SIGINT/SIGTERM or
// when the program asks for it.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yourusername/relay/internal/output"
)

type step struct {
	name string
	fn   func() error
}

// Handler manages graceful shutdown of the client
type Handler struct {
	logger       output.Logger
	forceTimeout time.Duration

	mu    sync.Mutex
	steps []step

	signals      chan os.Signal
	requested    chan struct{}
	requestOnce  sync.Once
	done         chan struct{}
	shutdownOnce sync.Once
}

// NewHandler creates a handler listening for SIGINT and SIGTERM. Steps
// still running after forceTimeout are abandoned.
func NewHandler(logger output.Logger, forceTimeout time.Duration) *Handler {
	h := &Handler{
		logger:       logger,
		forceTimeout: forceTimeout,
		signals:      make(chan os.Signal, 1),
		requested:    make(chan struct{}),
		done:         make(chan struct{}),
	}
	signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)
	return h
}

// Register adds a step. Steps run in reverse registration order, so what
// was opened first is closed last.
func (h *Handler) Register(name string, fn func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.steps = append(h.steps, step{name: name, fn: fn})
}

// Request asks Wait to return as if a signal had arrived
func (h *Handler) Request() {
	h.requestOnce.Do(func() { close(h.requested) })
}

// Wait blocks until a signal, a Request or ctx is done, then shuts down
func (h *Handler) Wait(ctx context.Context) {
	select {
	case sig := <-h.signals:
		h.logger.Info("Received signal: %v", sig)
	case <-h.requested:
	case <-ctx.Done():
	}
	h.Shutdown()
}

// Shutdown runs every step once; later calls wait for the first to finish
func (h *Handler) Shutdown() {
	h.shutdownOnce.Do(func() {
		defer close(h.done)
		h.logger.Info("Shutting down...")

		finished := make(chan struct{})
		go func() {
			defer close(finished)
			h.runSteps()
		}()

		select {
		case <-finished:
			h.logger.Success("Shutdown complete")
		case <-time.After(h.forceTimeout):
			h.logger.Warning("Forced shutdown after %v", h.forceTimeout)
		}
	})
	<-h.done
}

func (h *Handler) runSteps() {
	h.mu.Lock()
	steps := make([]step, len(h.steps))
	copy(steps, h.steps)
	h.mu.Unlock()

	for i := len(steps) - 1; i >= 0; i-- {
		if err := steps[i].fn(); err != nil {
			h.logger.Error("Shutdown step %q failed: %v", steps[i].name, err)
		}
	}
}

// Done is closed once Shutdown has finished
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

// Stop stops listening for signals
func (h *Handler) Stop() {
	signal.Stop(h.signals)
}
