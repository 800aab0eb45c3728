// Package bootstrap wires the HTTP API of a running stagegen instance: the app
// auth token and component id of the instance, its registration attributes,
// and the routes serving the generated manifest and the pipeline state.
package bootstrap

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pipelinekit/stagegen/internal/buildinfo"
	"github.com/pipelinekit/stagegen/internal/output"
	"github.com/pipelinekit/stagegen/internal/state"
	"github.com/pipelinekit/stagegen/internal/web/auth"
	"github.com/pipelinekit/stagegen/internal/web/middleware"
	"github.com/pipelinekit/stagegen/internal/web/profiling"
	"github.com/pipelinekit/stagegen/internal/web/ratelimit"
	"github.com/pipelinekit/stagegen/internal/web/router"
	"github.com/pipelinekit/stagegen/internal/web/server"
	"github.com/pipelinekit/stagegen/internal/web/websocket"
)

// ScopeStateWrite allows a token to change the pipeline state
const ScopeStateWrite = "state:write"

// TokenQueryParam carries the token on websocket handshakes
const TokenQueryParam = "access_token"

// StateStore is the state tracker as used by the API
type StateStore interface {
	State() *state.PipelineState
	SetState(name, revision string, st state.State, message string) (*state.PipelineState, error)
	Subscribe() (<-chan state.PipelineState, func())
}

// Config holds the web bootstrap configuration
type Config struct {
	Address         string           `mapstructure:"address"`
	BaseHTTPURL     string           `mapstructure:"base_url"`
	ComponentID     string           `mapstructure:"component_id"`
	AppAuthToken    string           `mapstructure:"app_auth_token"`
	TokenTTL        time.Duration    `mapstructure:"token_ttl"`
	ShutdownTimeout time.Duration    `mapstructure:"shutdown_timeout"`
	TLSCertFile     string           `mapstructure:"tls_cert_file"`
	TLSKeyFile      string           `mapstructure:"tls_key_file"`
	RateLimit       ratelimit.Config `mapstructure:"rate_limit"`
	Profiling       profiling.Config `mapstructure:"profiling"`
	DataDir         string           `mapstructure:"-"`
}

// TLSEnabled reports whether the API is served over https
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// Task is the web server of one instance
type Task struct {
	runtime   buildinfo.RuntimeInfo
	build     buildinfo.BuildInfo
	config    Config
	states    StateStore
	manifests output.Reader
	auth      *auth.AuthService
	stream    *websocket.StreamHandler
	limiter   ratelimit.Limiter
	done      chan struct{}
	closeOnce sync.Once
	router    *router.Router
	server    *server.Server
	logger    *zap.Logger
}

// NewTask creates the web server. An empty component id or app auth token is
// replaced by a random one; an empty base URL is derived from the listen address.
func NewTask(cfg Config, states StateStore, manifests output.Reader, logger *zap.Logger) (*Task, error) {
	if states == nil {
		return nil, fmt.Errorf("state store is required")
	}
	if manifests == nil {
		return nil, fmt.Errorf("manifest reader is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Address == "" {
		cfg.Address = ":18630"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.AppAuthToken == "" {
		cfg.AppAuthToken = uuid.NewString()
	}
	if cfg.BaseHTTPURL == "" {
		cfg.BaseHTTPURL = defaultBaseURL(cfg.Address, cfg.TLSEnabled())
	}

	t := &Task{
		runtime:   buildinfo.NewRuntimeInfo(cfg.ComponentID, cfg.DataDir, cfg.BaseHTTPURL, cfg.AppAuthToken),
		build:     buildinfo.Get(),
		config:    cfg,
		states:    states,
		manifests: manifests,
		done:      make(chan struct{}),
		logger:    logger,
	}
	t.auth = auth.NewAuthService(t.AppAuthToken(), cfg.TokenTTL)
	t.stream = websocket.NewStreamHandler(states, nil, logger.Named("stream"))
	if cfg.RateLimit.Enabled {
		limiter, err := ratelimit.New(cfg.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		t.limiter = limiter
	}
	t.router = t.routes()

	srvConfig := server.DefaultConfig(t.router)
	srvConfig.Address = cfg.Address
	if cfg.TLSCertFile != "" || cfg.TLSKeyFile != "" {
		srvConfig.TLSConfig = &server.TLSConfig{CertFile: cfg.TLSCertFile, KeyFile: cfg.TLSKeyFile}
	}
	srv, err := server.New(srvConfig)
	if err != nil {
		return nil, err
	}
	t.server = srv

	return t, nil
}

// AppAuthToken returns the secret that signs API tokens
func (t *Task) AppAuthToken() string {
	return t.runtime.AppAuthToken
}

// ComponentID returns the id of this instance
func (t *Task) ComponentID() string {
	return t.runtime.ID
}

// RegistrationAttributes returns the attributes announced to other services:
// the base set followed by the runtime and build identifiers.
func (t *Task) RegistrationAttributes() map[string]string {
	attrs := t.baseRegistrationAttributes()
	attrs["runtimeVersion"] = t.build.GoVersion
	attrs["productVersion"] = t.build.Version
	attrs["buildDate"] = t.build.BuildDate
	attrs["buildRevision"] = t.build.GitCommit
	return attrs
}

func (t *Task) baseRegistrationAttributes() map[string]string {
	return map[string]string{
		"componentId": t.ComponentID(),
		"baseHttpUrl": t.runtime.BaseHTTPURL,
	}
}

// IssueToken issues an API token for this instance with the given scopes
func (t *Task) IssueToken(scopes ...string) (string, error) {
	return t.auth.GenerateToken(t.ComponentID(), scopes)
}

// Handler returns the HTTP handler of the API
func (t *Task) Handler() http.Handler {
	return t.router
}

// Routes describes the registered API routes
func (t *Task) Routes() []router.RouteInfo {
	return t.router.Routes()
}

// Addr returns the listen address, resolved once the server is listening
func (t *Task) Addr() string {
	return t.server.Addr()
}

// Listen binds the listen address without serving
func (t *Task) Listen() error {
	return t.server.Listen()
}

// Run serves the API until ctx is cancelled
func (t *Task) Run(ctx context.Context) error {
	runner := server.NewRunner(t.server, t.config.ShutdownTimeout, t.logger)
	runner.RegisterHook(t.stream.Close)
	runner.RegisterHook(func(context.Context) error {
		t.closeOnce.Do(func() { close(t.done) })
		return nil
	})
	if t.limiter != nil {
		defer t.limiter.Close()
	}

	t.logger.Info("web server starting",
		zap.String("component_id", t.ComponentID()),
		zap.String("base_url", t.runtime.BaseHTTPURL),
	)
	return runner.Run(ctx)
}

func (t *Task) routes() *router.Router {
	r := router.NewRouter()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(t.logger.Named("http")),
		middleware.Recovery(t.logger),
	)
	// Protected routes are limited after auth, keyed by component.
	var limit []middleware.Middleware
	if t.limiter != nil {
		limit = append(limit, middleware.RateLimit(t.limiter, t.logger.Named("ratelimit")))
	}

	r.Public(func(r *router.Router) {
		r.Get("/api/v1/system/info", http.HandlerFunc(t.handleSystemInfo))
	}, limit...)

	protected := append([]middleware.Middleware{
		middleware.AuthWithConfig(middleware.AuthConfig{
			AuthService: t.auth,
			QueryParam:  TokenQueryParam,
		}),
	}, limit...)
	r.Protected(func(r *router.Router) {
		r.Get("/api/v1/system/registration", http.HandlerFunc(t.handleRegistration))
		r.Get("/api/v1/stages", http.HandlerFunc(t.handleStages))
		r.Get("/api/v1/state", http.HandlerFunc(t.handleGetState))
		r.Post("/api/v1/state", http.HandlerFunc(t.handleSetState))
		r.Get("/api/v1/state/stream", t.stream)
		r.Get("/api/v1/state/events", http.HandlerFunc(t.handleStateEvents))
		profiling.Register(r, t.config.Profiling)
	}, protected...)

	return r
}

func defaultBaseURL(addr string, tls bool) string {
	scheme := "http://"
	if tls {
		scheme = "https://"
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return scheme + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
		if name, err := os.Hostname(); err == nil && name != "" {
			host = name
		}
	}
	return scheme + net.JoinHostPort(host, port)
}
