package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/odomo-app/odomo/internal/auth"
	"github.com/odomo-app/odomo/internal/ratelimit"
	"github.com/odomo-app/odomo/internal/service/pet"
	"github.com/odomo-app/odomo/internal/storage"
)

// Server is the Odomo HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	handlers   *Handlers
	logger     *slog.Logger
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServerConfig holds all dependencies and configuration for creating a Server.
// Optional fields (nil-safe): SyncLimiter, AuthLimiter.
type ServerConfig struct {
	// Required dependencies.
	DB     *storage.DB
	JWTMgr *auth.JWTManager
	PetSvc *pet.Service
	Logger *slog.Logger

	// Optional dependencies (nil = disabled).
	SyncLimiter ratelimit.Limiter
	AuthLimiter ratelimit.Limiter

	// HTTP server settings.
	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	Version             string
	MaxRequestBodyBytes int64
}

// New creates a new HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	h := NewHandlers(HandlersDeps{
		DB:                  cfg.DB,
		JWTMgr:              cfg.JWTMgr,
		PetSvc:              cfg.PetSvc,
		Logger:              cfg.Logger,
		Version:             cfg.Version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
	})

	// Request ID extractor for rate limit error responses.
	reqIDFunc := func(r *http.Request) string {
		return RequestIDFromContext(r.Context())
	}

	// Step syncing is the anti-cheat surface: limited per owner.
	// Auth endpoints are limited by IP to slow credential stuffing.
	syncRL := ratelimit.Middleware(cfg.SyncLimiter, ownerKeyFunc, reqIDFunc)
	authRL := ratelimit.Middleware(cfg.AuthLimiter, ratelimit.IPKeyFunc, reqIDFunc)

	mux := http.NewServeMux()

	// Auth endpoints (no auth required, rate limited by IP).
	mux.Handle("POST /auth/signup", authRL(http.HandlerFunc(h.HandleSignup)))
	mux.Handle("POST /auth/login", authRL(http.HandlerFunc(h.HandleLogin)))

	// Pet lifecycle.
	mux.Handle("POST /v1/pet", http.HandlerFunc(h.HandleCreatePet))
	mux.Handle("GET /v1/pet", http.HandlerFunc(h.HandleGetPet))
	mux.Handle("DELETE /v1/pet", http.HandlerFunc(h.HandleDeletePet))
	mux.Handle("POST /v1/pet/interact", http.HandlerFunc(h.HandleInteract))
	mux.Handle("POST /v1/pet/xp", http.HandlerFunc(h.HandleAddExperience))

	// Economy.
	mux.Handle("GET /v1/inventory", http.HandlerFunc(h.HandleListInventory))
	mux.Handle("POST /v1/shop/buy", http.HandlerFunc(h.HandleBuyItem))
	mux.Handle("POST /v1/items/use", http.HandlerFunc(h.HandleUseItem))

	// Step syncing (rate limited per owner).
	mux.Handle("POST /v1/sync/steps", syncRL(http.HandlerFunc(h.HandleSyncSteps)))

	// Health (no auth, no rate limit).
	mux.HandleFunc("GET /health", h.HandleHealth)

	// Middleware chain (outermost executes first):
	// request ID → security headers → tracing → logging → auth → recovery → handler.
	var handler http.Handler = mux
	handler = recoveryMiddleware(cfg.Logger, handler)
	handler = authMiddleware(cfg.JWTMgr, handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = tracingMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		handler:  handler,
		handlers: h,
		logger:   cfg.Logger,
	}
}

// ownerKeyFunc extracts the owner ID from the request context for rate limiting.
func ownerKeyFunc(r *http.Request) string {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		return ""
	}
	return claims.OwnerID.String()
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
