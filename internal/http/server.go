// Package http exposes the records API and serves the embedded landing
// page. Request logging, security headers and rate limiting wrap every
// handler; per-user record lists are cached and invalidated on mutation.
package http

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"spendwise/internal/cache"
	"spendwise/internal/core"
	applog "spendwise/internal/log"
	"spendwise/internal/services"
	"spendwise/internal/storage"
	appweb "spendwise/web"
)

// RecordAPI is what the handlers need from the record service.
type RecordAPI interface {
	List(ctx context.Context, userID int64) ([]core.Record, error)
	Create(ctx context.Context, rec core.Record) (int64, error)
	Update(ctx context.Context, rec core.Record) error
	Delete(ctx context.Context, id int64, t core.RecordType) (int64, error)
}

// UserAPI is what the handlers need from the user service.
type UserAPI interface {
	Register(ctx context.Context, in services.RegisterInput) (storage.User, error)
	Login(ctx context.Context, username, password string) (storage.User, error)
	GetUser(ctx context.Context, id int64) (storage.User, error)
	ResetPassword(ctx context.Context, username, codeword, newPassword string) error
}

// Options tune cache and rate-limit behavior.
type Options struct {
	ListCacheSize      int
	ListCacheTTL       time.Duration
	RateLimitPerMinute int
}

func defaultOptions() Options {
	return Options{
		ListCacheSize:      200,
		ListCacheTTL:       5 * time.Minute,
		RateLimitPerMinute: 60,
	}
}

type Server struct {
	http.Server
	records RecordAPI
	users   UserAPI

	listCache   *cache.LRU[[]core.Record]
	rateLimiter *rateLimiter

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, records RecordAPI, users UserAPI, opts *Options) *Server {
	o := defaultOptions()
	if opts != nil {
		o = *opts
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		records:          records,
		users:            users,
		listCache:        cache.NewLRU[[]core.Record](o.ListCacheSize, o.ListCacheTTL),
		rateLimiter:      newRateLimiter(o.RateLimitPerMinute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("/api/records/", s.withMiddleware(s.handleListRecords))
	mux.HandleFunc("/api/records", s.withMiddleware(s.handleRecordMutation))
	mux.HandleFunc("/api/users/register", s.withMiddleware(s.handleRegister))
	mux.HandleFunc("/api/users/login", s.withMiddleware(s.handleLogin))
	mux.HandleFunc("/api/users/user/", s.withMiddleware(s.handleGetUser))
	mux.HandleFunc("/api/profile/reset", s.withMiddleware(s.handleResetPassword))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	// Static landing page; unknown non-API paths fall back to index.html
	// so client-side routes survive a reload.
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		mux.Handle("/", s.withMiddleware(staticHandler(sub)))
	} else {
		slog.Warn("failed to mount embedded static FS", "error", err)
	}

	return s
}

func staticHandler(static fs.FS) http.HandlerFunc {
	fileServer := http.FileServer(http.FS(static))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			if _, err := fs.Stat(static, r.URL.Path[1:]); err != nil {
				r.URL.Path = "/"
			}
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(w, r)
	}
}

// withMiddleware adds request ids, logging, security headers and rate
// limiting of mutating requests.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := clientAddr(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeMessage(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func (s *Server) cacheKey(userID int64) string {
	return "records:" + strconv.FormatInt(userID, 10)
}

func (s *Server) invalidateList(userID int64) {
	s.listCache.Delete(s.cacheKey(userID))
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.listCache.CleanExpired(); cleaned > 0 {
				slog.Debug("cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutines, then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
