// Package api exposes the chat service as a cookie-scoped JSON API with an
// embedded single-page chat UI.
//
// Every request is bound to a session via the sid cookie; sessions hold the
// caller's API keys, agent, and transcript, so all state-changing routes
// operate on the caller's own session only.
package api

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"

	"github.com/scoutchat/scout/internal/log"
	"github.com/scoutchat/scout/internal/session"
)

//go:embed static
var staticFS embed.FS

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger   log.Logger
	Sessions *session.Manager // Required

	CORSOrigins []string // Allowed origins for CORS
	IsDev       bool     // Enables HTTP cookies (no Secure flag)
	TrustProxy  bool     // Trust X-Real-IP/X-Forwarded-For headers
	RateRPS     float64  // Rate limiter refill per IP (0 = default 5/s)
	RateBurst   int      // Rate limiter burst per IP (0 = default 20)
}

// Server is the JSON API HTTP server.
type Server struct {
	handler http.Handler
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("session manager is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	sp := &sessionProvisioner{
		manager: cfg.Sessions,
		isDev:   cfg.IsDev,
		logger:  logger,
	}
	kh := &keysHandler{logger: logger}
	ch := &chatHandler{logger: logger}

	mux := http.NewServeMux()

	// Credentials
	mux.HandleFunc("POST /api/v1/keys", kh.setKey)
	mux.HandleFunc("POST /api/v1/keys/reset", kh.reset)
	mux.HandleFunc("GET /api/v1/status", kh.status)

	// Chat
	mux.HandleFunc("POST /api/v1/chat", ch.send)
	mux.HandleFunc("GET /api/v1/history", ch.history)

	rps := cfg.RateRPS
	if rps <= 0 {
		rps = 5.0
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 20
	}
	rl := newRateLimiter(rps, burst)

	// API middleware stack (outermost first):
	//   RequestID → Logging → CORS → RateLimit → Session → Routes
	// RequestID must be before Logging so request_id is available in log
	// attributes. CORS must be before RateLimit so preflight OPTIONS gets
	// proper CORS headers.
	var handler http.Handler = mux
	handler = sessionMiddleware(sp)(handler)
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)

	// Top-level mux separates health probes and static assets from the API
	// stack; they skip sessions and rate limiting.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /static/", staticHandler())
	topMux.HandleFunc("GET /{$}", serveIndex)
	topMux.Handle("/", handler)

	// Recovery and security headers wrap every route, including health and
	// static assets.
	isDev := cfg.IsDev
	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w, isDev)
		topMux.ServeHTTP(w, r)
	})

	return &Server{handler: recoveryMiddleware(logger)(root)}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// staticHandler serves the embedded chat UI assets.
func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, ".")
	if err != nil {
		// Cannot happen with embed.FS and "."; fail fast if assets are
		// corrupted.
		panic("static assets unavailable: " + err.Error())
	}
	return http.FileServer(http.FS(sub))
}

// serveIndex serves the chat page at the root path.
func serveIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
