package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// Server wraps an http.Server with a listener that may be bound before serving
type Server struct {
	httpServer *http.Server
	config     *Config

	mu       sync.Mutex
	listener net.Listener
}

// Config holds server configuration
type Config struct {
	// Address is the server listen address (e.g., ":18630")
	Address string

	// Handler is the HTTP handler for the server
	Handler http.Handler

	// TLS configuration
	TLSConfig *TLSConfig

	// Timeouts
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration

	MaxHeaderBytes int
}

// TLSConfig holds TLS/SSL configuration
type TLSConfig struct {
	CertFile string
	KeyFile  string

	// MinVersion is the minimum TLS version (default: TLS 1.2)
	MinVersion uint16
}

// DefaultConfig returns the server configuration used by the web bootstrap.
// WriteTimeout stays zero so long-lived websocket streams are not cut off.
func DefaultConfig(handler http.Handler) *Config {
	return &Config{
		Address:           ":18630",
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}
}

// New creates a new server instance
func New(config *Config) (*Server, error) {
	if config == nil {
		return nil, fmt.Errorf("server config cannot be nil")
	}

	if config.Handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}

	if config.TLSConfig != nil && (config.TLSConfig.CertFile == "" || config.TLSConfig.KeyFile == "") {
		return nil, fmt.Errorf("tls requires both a certificate and a key file")
	}

	httpServer := &http.Server{
		Addr:              config.Address,
		Handler:           config.Handler,
		ReadTimeout:       config.ReadTimeout,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		MaxHeaderBytes:    config.MaxHeaderBytes,
	}

	if config.TLSConfig != nil {
		minVersion := config.TLSConfig.MinVersion
		if minVersion == 0 {
			minVersion = tls.VersionTLS12
		}
		httpServer.TLSConfig = &tls.Config{MinVersion: minVersion}
	}

	return &Server{
		httpServer: httpServer,
		config:     config,
	}, nil
}

// Listen binds the listen address. Addr reports the bound address afterwards.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener
	return nil
}

// Serve binds the listener if needed and serves until Shutdown or Close
func (s *Server) Serve() error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()

	if s.config.TLSConfig != nil {
		return s.httpServer.ServeTLS(listener, s.config.TLSConfig.CertFile, s.config.TLSConfig.KeyFile)
	}
	return s.httpServer.Serve(listener)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Close immediately closes the server
func (s *Server) Close() error {
	return s.httpServer.Close()
}

// Addr returns the server's network address
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Address
}
