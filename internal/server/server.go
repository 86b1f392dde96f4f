package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/slok/go-http-metrics/metrics/prometheus"
	"github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"

	"github.com/arzdex/arzdex/internal/core/cache"
	"github.com/arzdex/arzdex/internal/core/handler"
	"github.com/arzdex/arzdex/internal/core/logger"
	middlWre "github.com/arzdex/arzdex/internal/core/middleware"
	"github.com/arzdex/arzdex/internal/core/repository/postgres"
	"github.com/arzdex/arzdex/internal/core/usecase"
	"github.com/arzdex/arzdex/pkg/config"
	"github.com/arzdex/arzdex/pkg/postgresdb"
)

type Server struct {
	router          *mux.Router
	log             logger.Logger
	addr            string
	httpServer      *http.Server
	exchangeHandler *handler.ExchangeHandler
	adminHandler    *handler.AdminHandler
	db              *postgresdb.Database
	priceCache      *cache.RedisCache
}

// logSink is the in-process notification sink: events are logged and the
// excluded presentation layer tails them. Swappable for a real delivery
// channel.
type logSink struct {
	log logger.Logger
}

func (s *logSink) Notify(audience, title, message string, severity usecase.Severity) error {
	s.log.Info("Notification",
		logger.StringField("audience", audience),
		logger.StringField("title", title),
		logger.StringField("message", message),
		logger.StringField("severity", string(severity)))
	return nil
}

func NewServer(log logger.Logger) (*Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := postgresdb.NewPostgresDB(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	stateRepo, err := postgres.NewPostgresStateRepo(db.DB, log)
	if err != nil {
		return nil, err
	}

	var priceCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		priceCache, err = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			return nil, err
		}
	}

	exchange := usecase.NewExchange(stateRepo, &logSink{log: log}, &usecase.StaticPriceFeed{}, priceCache, log)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := exchange.Init(ctx); err != nil {
		return nil, err
	}

	server := &Server{
		log:             log,
		addr:            cfg.HTTPAddr,
		router:          mux.NewRouter(),
		exchangeHandler: handler.NewExchangeHandler(exchange, log),
		adminHandler:    handler.NewAdminHandler(exchange, log),
		db:              db,
		priceCache:      priceCache,
	}

	server.router.Use(loggingMiddleware(server.log))

	mw := middleware.New(middleware.Config{
		Recorder: prometheus.NewRecorder(prometheus.Config{}),
	})

	server.router.Use(func(next http.Handler) http.Handler {
		return std.Handler("", mw, next)
	})

	server.RegisterRoutes()

	return server, nil
}

// Addr is the listen address from config (HTTP_ADDR, default :8080).
func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) RegisterRoutes() {
	s.router.Use(
		middlWre.WithErrorHandler(s.log),
		middlWre.Recovery(s.log),
	)
	s.exchangeHandler.RegisterRoutes(s.router)
	s.adminHandler.RegisterRoutes(s.router)
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	s.router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
}

func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       9 * time.Second,
		WriteTimeout:      12 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 60 * time.Second,
	}

	s.httpServer = srv

	return srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	var shutdownErr error

	go func() {
		if s.httpServer != nil {
			err := s.httpServer.Shutdown(ctx)
			if err != nil {
				s.log.Error("failed to shutdown HTTP server", logger.ErrorField("error", err))
				shutdownErr = fmt.Errorf("HTTP server shutdown error: %w", err)
			}
		}

		if s.priceCache != nil {
			if err := s.priceCache.Close(); err != nil {
				s.log.Error("failed to close price cache", logger.ErrorField("error", err))
			}
		}

		if s.db != nil {
			err := s.db.Close()
			if err != nil {
				s.log.Error("failed to close database connection", logger.ErrorField("error", err))
				shutdownErr = fmt.Errorf("database shutdown error: %w", err)
			}
		}

		close(done)
	}()

	select {
	case <-done:
		return shutdownErr
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (s *Server) RunTLS(addr, certFile, keyFile string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       9 * time.Second,
		WriteTimeout:      9 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 6 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
	}

	s.httpServer = srv
	return srv.ListenAndServeTLS(certFile, keyFile)
}

func loggingMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Info("HTTP request",
				logger.StringField("method", r.Method),
				logger.StringField("path", r.URL.Path),
				logger.StringField("remote_addr", r.RemoteAddr),
				logger.StringField("user_agent", r.UserAgent()),
			)
			next.ServeHTTP(w, r)
		})
	}
}
