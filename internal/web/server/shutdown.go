package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ShutdownHook is a function called during graceful shutdown
type ShutdownHook func(ctx context.Context) error

// Runner serves until its context is cancelled, then shuts down gracefully
type Runner struct {
	server  *Server
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	hooks []ShutdownHook
}

// NewRunner creates a runner for server. A zero timeout means 30 seconds.
func NewRunner(server *Server, timeout time.Duration, logger *zap.Logger) *Runner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		server:  server,
		timeout: timeout,
		logger:  logger,
	}
}

// RegisterHook registers a hook run before the HTTP server stops
func (r *Runner) RegisterHook(hook ShutdownHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
}

// Run serves until ctx is done or the server fails
func (r *Runner) Run(ctx context.Context) error {
	if err := r.server.Listen(); err != nil {
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		r.logger.Info("starting server", zap.String("addr", r.server.Addr()))
		if err := r.server.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server failed: %w", err)
		}
		close(errChan)
	}()

	select {
	case err, ok := <-errChan:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
		r.logger.Info("shutdown requested, shutting down gracefully", zap.Duration("timeout", r.timeout))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	r.mu.Lock()
	hooks := make([]ShutdownHook, len(r.hooks))
	copy(hooks, r.hooks)
	r.mu.Unlock()

	for i, hook := range hooks {
		if err := hook(shutdownCtx); err != nil {
			r.logger.Warn("shutdown hook failed", zap.Int("hook", i), zap.Error(err))
		}
	}

	if err := r.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	r.logger.Info("server shutdown completed")
	return nil
}
