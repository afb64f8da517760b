// Package http exposes the JSON API. Every expense and summary route is
// scoped to the authenticated caller; the only public routes are health
// probes, registration and login.
package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"outlay/internal/auth"
	"outlay/internal/log"
	"outlay/internal/middleware/trace"
	"outlay/internal/services"
	"outlay/internal/storage"
)

type Server struct {
	http.Server

	expenses *services.ExpenseService
	accounts *services.AccountService
	tokens   *auth.TokenManager
	resolver *auth.Resolver
	repo     *storage.Repository
	logger   *log.Logger

	loginLimiter *rateLimiter
	shutdownOnce sync.Once
}

func NewServer(addr string, expenses *services.ExpenseService, accounts *services.AccountService, tokens *auth.TokenManager, resolver *auth.Resolver, repo *storage.Repository) *Server {
	s := &Server{
		expenses:     expenses,
		accounts:     accounts,
		tokens:       tokens,
		resolver:     resolver,
		repo:         repo,
		logger:       log.New(log.ComponentHTTP, slog.LevelInfo),
		loginLimiter: newRateLimiter(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	// Credential endpoints carry a per-IP limiter against brute force.
	mux.HandleFunc("POST /auth/register", s.withRateLimit(s.handleRegister))
	mux.HandleFunc("POST /auth/login", s.withRateLimit(s.handleLogin))

	mux.HandleFunc("GET /account", s.requireAuth(s.handleGetAccount))
	mux.HandleFunc("PUT /account", s.requireAuth(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /account", s.requireAuth(s.handleDeleteAccount))

	mux.HandleFunc("POST /expenses", s.requireAuth(s.handleCreateExpense))
	mux.HandleFunc("GET /expenses", s.requireAuth(s.handleListExpenses))
	mux.HandleFunc("GET /expenses/categories", s.requireAuth(s.handleCategories))
	mux.HandleFunc("GET /expenses/payment-methods", s.requireAuth(s.handlePaymentMethods))
	mux.HandleFunc("GET /expenses/{id}", s.requireAuth(s.handleGetExpense))
	mux.HandleFunc("PUT /expenses/{id}", s.requireAuth(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /expenses/{id}", s.requireAuth(s.handleDeleteExpense))

	mux.HandleFunc("GET /summary/total", s.requireAuth(s.handleTotal))
	mux.HandleFunc("GET /summary/range", s.requireAuth(s.handleRangeTotal))
	mux.HandleFunc("GET /summary/monthly", s.requireAuth(s.handleMonthlyTotal))
	mux.HandleFunc("GET /summary/yearly", s.requireAuth(s.handleYearlyTotal))
	mux.HandleFunc("GET /summary/category", s.requireAuth(s.handleCategoryTotal))

	mux.HandleFunc("GET /audit", s.requireAuth(s.handleAuditTrail))

	mux.HandleFunc("POST /users", s.requireAuth(s.handleCreateUser))
	mux.HandleFunc("GET /users", s.requireAuth(s.handleListUsers))
	mux.HandleFunc("GET /users/{id}", s.requireAuth(s.handleGetUser))
	mux.HandleFunc("PUT /users/{id}", s.requireAuth(s.handleUpdateUser))
	mux.HandleFunc("DELETE /users/{id}", s.requireAuth(s.handleDeleteUser))

	tracer := trace.NewMiddleware(s.logger)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      tracer.Handler(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Shutdown stops the listener and the limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.loginLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// Per-IP sliding-window limiter for the credential endpoints.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientWindow
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientWindow struct {
	windowStart time.Time
	requests    int
}

const (
	rateLimitWindow   = time.Minute
	rateLimitRequests = 10
)

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientWindow),
		stopCleanup: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	window, ok := rl.clients[clientIP]
	if !ok || now.Sub(window.windowStart) > rateLimitWindow {
		rl.clients[clientIP] = &clientWindow{windowStart: now, requests: 1}
		return true
	}

	window.requests++
	return window.requests <= rateLimitRequests
}

func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.dropStale()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) dropStale() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, window := range rl.clients {
		if window.windowStart.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() { close(rl.stopCleanup) })
}

func (s *Server) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !s.loginLimiter.allow(host) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	}
}
