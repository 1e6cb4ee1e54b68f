package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ethpandaops/parkoor/pkg/auth"
	"github.com/ethpandaops/parkoor/pkg/config"
	"github.com/ethpandaops/parkoor/pkg/evidence"
	"github.com/ethpandaops/parkoor/pkg/site"
	"github.com/ethpandaops/parkoor/pkg/store"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Server exposes the API HTTP server lifecycle.
type Server interface {
	Start(ctx context.Context) error
	Stop() error
}

// Compile-time interface check.
var _ Server = (*server)(nil)

type server struct {
	log        logrus.FieldLogger
	cfg        *config.Config
	store      store.Store
	evidence   evidence.Store
	sessions   *auth.SessionCodec
	sso        *auth.SSOCodec
	guard      *auth.Guard
	sites      *site.Resolver
	metrics    *metrics
	loc        *time.Location
	now        func() time.Time
	router     http.Handler
	httpServer *http.Server
	wg         sync.WaitGroup
	done       chan struct{}
}

// NewServer creates a new API server.
func NewServer(
	log logrus.FieldLogger,
	cfg *config.Config,
) Server {
	return &server{
		log:   log.WithField("component", "api"),
		cfg:   cfg,
		sites: site.NewResolver(cfg.Site.DefaultCode),
		loc:   cfg.Location(),
		now:   time.Now,
		done:  make(chan struct{}),
	}
}

// Start opens the store, seeds config data and starts the HTTP server.
func (s *server) Start(ctx context.Context) error {
	if err := s.setup(ctx); err != nil {
		s.closeStore()

		return err
	}

	s.httpServer = &http.Server{
		Addr:              s.cfg.Server.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Bind the listener synchronously so we fail fast on port conflicts.
	ln, err := net.Listen("tcp", s.cfg.Server.Listen)
	if err != nil {
		s.closeStore()

		return fmt.Errorf("listening on %s: %w", s.cfg.Server.Listen, err)
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		s.log.WithFields(logrus.Fields{
			"listen":    s.cfg.Server.Listen,
			"root_path": s.cfg.Server.RootPath,
		}).Info("API server starting")

		if err := s.httpServer.Serve(ln); err != nil &&
			err != http.ErrServerClosed {
			s.log.WithError(err).Error("HTTP server error")
		}
	}()

	return nil
}

// setup wires every dependency and builds the router without listening.
func (s *server) setup(ctx context.Context) error {
	s.store = store.NewStore(s.log, &s.cfg.Database)
	if err := s.store.Start(ctx); err != nil {
		return fmt.Errorf("starting store: %w", err)
	}

	if s.cfg.Auth.Local.Enabled {
		users := s.cfg.Auth.Local.Users
		if s.cfg.Database.SeedDemo {
			users = append(store.DemoUsers(), users...)
		}

		if err := s.store.SeedUsers(ctx, users); err != nil {
			return fmt.Errorf("seeding users: %w", err)
		}
	}

	if s.cfg.Database.SeedDemo {
		if err := s.store.SeedDemo(ctx, s.sites.Default()); err != nil {
			return fmt.Errorf("seeding demo data: %w", err)
		}
	}

	ev, err := evidence.NewStore(s.log, &s.cfg.Storage, s.appURL("/uploads"))
	if err != nil {
		return fmt.Errorf("initializing evidence storage: %w", err)
	}

	s.evidence = ev

	s.sessions = auth.NewSessionCodec(
		s.cfg.Auth.Session.Secret,
		s.cfg.Auth.Session.Salt,
		s.cfg.Auth.Session.MaxAge,
	).WithClock(s.clock)
	s.guard = auth.NewGuard(s.sessions, s.cfg.Auth.Session.CookieName)

	if s.cfg.Auth.SSO.Enabled {
		s.sso = auth.NewSSOCodec(
			s.cfg.Auth.SSO.Secret,
			s.cfg.Auth.SSO.Salt,
			s.cfg.Auth.SSO.MaxAge,
		).WithClock(s.clock)

		s.log.Info("SSO handoff enabled")
	}

	s.metrics = newMetrics()
	s.router = s.buildRouter()

	return nil
}

// Stop gracefully shuts down the HTTP server and closes the store.
func (s *server) Stop() error {
	close(s.done)

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(
			context.Background(), shutdownTimeout,
		)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.log.WithError(err).Warn("HTTP server shutdown error")
		}
	}

	s.wg.Wait()

	if s.store != nil {
		if err := s.store.Stop(); err != nil {
			return fmt.Errorf("stopping store: %w", err)
		}
	}

	s.log.Info("API server stopped")

	return nil
}

// closeStore releases the store after a failed Start, since callers do
// not Stop a server that never started.
func (s *server) closeStore() {
	if s.store == nil {
		return
	}

	if err := s.store.Stop(); err != nil {
		s.log.WithError(err).Warn("Failed to close store")
	}
}

func (s *server) clock() time.Time {
	return s.now()
}

// appURL prefixes path with the configured root path.
func (s *server) appURL(path string) string {
	if path == "" || path[0] != '/' {
		path = "/" + path
	}

	return s.cfg.Server.RootPath + path
}

// cookiePath is the path scope of the session cookie.
func (s *server) cookiePath() string {
	if s.cfg.Server.RootPath == "" {
		return "/"
	}

	return s.cfg.Server.RootPath
}
