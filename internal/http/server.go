package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tickethub-backend/internal/config"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
)

type Server struct {
	Engine *gin.Engine
	log    *logger.Logger
	srv    *http.Server
	cfg    config.HTTPConfig
}

func NewServer(log *logger.Logger, cfg config.HTTPConfig, engine *gin.Engine) *Server {
	handler := http.Handler(engine)
	if cfg.MaxRequestBytes > 0 {
		handler = limitBody(engine, cfg.MaxRequestBytes)
	}
	return &Server{
		Engine: engine,
		log:    log.With("component", "HTTPServer"),
		cfg:    cfg,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the configured shutdown timeout. Long-lived streams must be ended
// through OnShutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", s.cfg.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.log.Info("HTTP server shutting down")
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// OnShutdown registers fn to run when shutdown begins, before draining.
func (s *Server) OnShutdown(fn func()) {
	s.srv.RegisterOnShutdown(fn)
}

func limitBody(next http.Handler, max int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, max)
		}
		next.ServeHTTP(w, r)
	})
}
