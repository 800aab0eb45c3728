// Package websocket streams pipeline state changes to connected clients.
package websocket

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pipelinekit/stagegen/internal/state"
)

// StateSource is the state tracker as seen by the stream
type StateSource interface {
	State() *state.PipelineState
	Subscribe() (<-chan state.PipelineState, func())
}

// Config holds WebSocket configuration
type Config struct {
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin is passed to the upgrader; nil enforces same origin
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns default WebSocket configuration
func DefaultConfig() *Config {
	return &Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// StreamHandler upgrades requests and streams state changes to each client
type StreamHandler struct {
	upgrader websocket.Upgrader
	source   StateSource
	logger   *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	clients atomic.Int64
}

// NewStreamHandler creates a stream over source
func NewStreamHandler(source StateSource, config *Config, logger *zap.Logger) *StreamHandler {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &StreamHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		source: source,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.ctx.Err() != nil {
		http.Error(w, "stream closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:     uuid.New().String(),
		conn:   conn,
		logger: h.logger,
	}

	h.wg.Add(1)
	h.clients.Add(1)
	defer func() {
		conn.Close()
		h.clients.Add(-1)
		h.wg.Done()
		h.logger.Debug("stream client disconnected", zap.String("client", c.id))
	}()

	updates, unsubscribe := h.source.Subscribe()
	defer unsubscribe()

	h.logger.Debug("stream client connected", zap.String("client", c.id))

	if current := h.source.State(); current != nil {
		if err := c.send(TypeSnapshot, current); err != nil {
			return
		}
	}

	done := make(chan struct{})
	go c.readPump(done)
	c.writePump(h.ctx, updates, done)
}

// Clients returns the number of connected clients
func (h *StreamHandler) Clients() int {
	return int(h.clients.Load())
}

// Close disconnects all clients and waits for them to finish
func (h *StreamHandler) Close(ctx context.Context) error {
	h.cancel()

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
