// Package dashboard serves the Tickora JSON API.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/tickora/internal/board"
	"github.com/zulandar/tickora/internal/history"
	"github.com/zulandar/tickora/internal/models"
	"github.com/zulandar/tickora/internal/standup"
	"github.com/zulandar/tickora/internal/store"
	"go.uber.org/zap"
)

// StartOpts holds configuration for the API server.
type StartOpts struct {
	Store      *store.Store
	Recorder   *history.Recorder  // nil serves metrics without a velocity delta
	Processor  *standup.Processor // nil builds one over StandupLog
	StandupLog *standup.Log       // nil disables standup history
	Columns    []models.Status    // default board columns; nil means board.DefaultColumns
	WIPLimits  map[models.Status]int
	Port       int
	Out        io.Writer
	Logger     *zap.Logger
	Clock      func() time.Time

	// PollInterval is how often board event streams check for changes.
	PollInterval time.Duration
}

func (o *StartOpts) applyDefaults() {
	if o.Port <= 0 {
		o.Port = 8080
	}
	if len(o.Columns) == 0 {
		o.Columns = board.DefaultColumns
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Clock == nil {
		o.Clock = func() time.Time { return time.Now().UTC() }
	}
	if o.Processor == nil && o.Store != nil {
		o.Processor = standup.NewProcessor(o.Store, standup.Options{Log: o.StandupLog, Logger: o.Logger, Clock: o.Clock})
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 2 * time.Second
	}
}

// NewRouter builds the API handler.
func NewRouter(opts StartOpts) (*gin.Engine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("dashboard: store is required")
	}
	opts.applyDefaults()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(opts.Logger))
	registerRoutes(router, newAPI(opts))
	return router, nil
}

// Start launches the API server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	router, err := NewRouter(opts)
	if err != nil {
		return err
	}
	port := opts.Port
	if port <= 0 {
		port = 8080
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Tickora API running at http://localhost:%d/api\n", port)
	}

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}
