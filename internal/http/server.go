package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/edusummarize/internal/auth"
	"github.com/nguyentantai21042004/edusummarize/internal/config"
	"github.com/nguyentantai21042004/edusummarize/internal/logger"
	"github.com/nguyentantai21042004/edusummarize/internal/processor"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	engine *gin.Engine
	cfg    *config.Config
	logger logger.Logger
}

func NewServer(cfg *config.Config, proc processor.Processor, store HistoryStore, verifier auth.Verifier, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(log))
	engine.Use(MaxBodySize(cfg.Server.MaxBodyBytes))
	engine.Use(CORS(cfg.Server.AllowedOrigins))

	api := NewAPI(proc, store, verifier, log)
	registerRoutes(engine, api)

	return &Server{engine: engine, cfg: cfg, logger: log}
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.Server.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(context.Background(), "Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return <-errCh
}
