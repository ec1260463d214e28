package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/teatak/smt/config"
	"github.com/teatak/smt/translator"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve translations over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			path, _ := cmd.Flags().GetString("config")
			build := func(ctx context.Context) (*translator.Translator, error) {
				cfg, err := config.Load(path)
				if err != nil {
					return nil, err
				}
				return translator.Build(ctx, cfg, logger)
			}
			tr, err := translator.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			gin.SetMode(gin.ReleaseMode)
			srv := newServer(tr, build, logger)
			httpSrv := &http.Server{Addr: cfg.Server.Addr, Handler: srv.routes()}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", slog.String("addr", cfg.Server.Addr))
				errCh <- httpSrv.ListenAndServe()
			}()
			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			logger.Info("shutting down")
			return httpSrv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// server holds the live translator. /reload builds a new one and swaps it in; requests
// in flight keep the one they started with.
type server struct {
	mu     sync.RWMutex
	tr     *translator.Translator
	build  func(context.Context) (*translator.Translator, error)
	logger *slog.Logger
}

func newServer(tr *translator.Translator, build func(context.Context) (*translator.Translator, error), logger *slog.Logger) *server {
	return &server{tr: tr, build: build, logger: logger}
}

func (s *server) current() *translator.Translator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tr
}

func (s *server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/translate", s.handleTranslate)
	r.POST("/reload", s.handleReload)
	return r
}

type translateRequest struct {
	Text string `json:"text" binding:"required"`
}

type nbestEntry struct {
	Translation string  `json:"translation"`
	Score       float64 `json:"score"`
}

type translateResponse struct {
	Translation string       `json:"translation"`
	Score       float64      `json:"score"`
	RequestID   string       `json:"request_id"`
	NBest       []nbestEntry `json:"nbest,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *server) handleTranslate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	res, err := s.current().Translate(c.Request.Context(), req.Text)
	if err != nil {
		status := http.StatusInternalServerError
		if translator.Failed(err) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, errorResponse{Error: err.Error(), RequestID: res.RequestID})
		return
	}
	resp := translateResponse{Translation: res.Translation, Score: res.Score, RequestID: res.RequestID}
	for _, d := range res.NBest {
		resp.NBest = append(resp.NBest, nbestEntry{Translation: translator.Detokenize(d.Words), Score: d.Score})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *server) handleReload(c *gin.Context) {
	tr, err := s.build(c.Request.Context())
	if err != nil {
		s.logger.Error("reload failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	s.mu.Lock()
	s.tr = tr
	s.mu.Unlock()
	s.logger.Info("translator reloaded")
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}
