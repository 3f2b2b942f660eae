package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"cinerate/internal/config"
	"cinerate/internal/logging"
	"cinerate/internal/ratings"
)

// Ratings answers a rating request for a raw title.
type Ratings interface {
	GetRatings(ctx context.Context, raw string) *ratings.Result
}

// CacheMaintainer exposes the cache operations the server needs outside the
// request path.
type CacheMaintainer interface {
	EvictExpired(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

// Server serves the rating API and enforces single-instance execution through
// a lock file in the data directory.
type Server struct {
	bind         string
	cacheBackend string
	ratings      Ratings
	cache        CacheMaintainer
	logger       *slog.Logger

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	listener  net.Listener
	server    *http.Server
	sweepDone chan struct{}
	stopOnce  sync.Once
}

// New constructs a Server from configuration.
func New(cfg *config.Config, ratings Ratings, cache CacheMaintainer, logger *slog.Logger) (*Server, error) {
	if cfg == nil || ratings == nil || cache == nil {
		return nil, errors.New("server requires config, ratings gateway, and cache")
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address is empty")
	}
	lockPath := cfg.LockPath()
	s := &Server{
		bind:         bind,
		cacheBackend: cfg.Cache.Backend,
		ratings:      ratings,
		cache:        cache,
		logger:       logging.NewComponentLogger(logger, "api-server"),
		lockPath:     lockPath,
		lock:         flock.New(lockPath),
		sweepDone:    make(chan struct{}),
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the API routes wrapped in request-id and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/messages", s.handleMessage)
	mux.HandleFunc("/api/ratings", s.handleRatings)
	mux.HandleFunc("/api/status", s.handleStatus)
	return withRequestID(withCORS(mux))
}

// Start acquires the instance lock, begins listening, and launches the
// one-shot expired-entry sweep. The server shuts down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return errors.New("server already running")
	}

	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another cinerate server is already running (lock %s)", s.lockPath)
	}

	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		_ = s.lock.Unlock()
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.running.Store(true)

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go s.sweep(ctx)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("lock", s.lockPath),
		logging.String("cache_backend", s.cacheBackend),
	)
	return nil
}

// Stop shuts down the HTTP server and releases the instance lock.
func (s *Server) Stop() {
	if !s.running.Load() {
		return
	}
	s.stopOnce.Do(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release server lock",
				logging.String(logging.FieldEventType, "lock_release_failed"),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the lock file if no server is running"),
			)
		}
		s.running.Store(false)
		s.logger.Info("api server stopped")
	})
}

// Addr returns the bound listener address, or the configured bind before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

// Running reports whether the server is accepting requests.
func (s *Server) Running() bool {
	return s.running.Load()
}

// SweepDone is closed once the startup sweep has finished.
func (s *Server) SweepDone() <-chan struct{} {
	return s.sweepDone
}

func (s *Server) sweep(ctx context.Context) {
	defer close(s.sweepDone)
	start := time.Now()
	removed, err := s.cache.EvictExpired(ctx)
	if err != nil {
		logging.WarnWithContext(s.logger, "startup sweep failed", "cache_sweep_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'cinerate cache evict' to retry"),
			logging.String(logging.FieldImpact, "expired entries remain on disk but are never served"),
		)
		return
	}
	s.logger.Info("startup sweep complete",
		logging.Int("removed", removed),
		logging.Duration("duration", time.Since(start)),
	)
}
