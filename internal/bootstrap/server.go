package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Domenick1991/flightdashboard/api"
	"github.com/Domenick1991/flightdashboard/config"
	"github.com/Domenick1991/flightdashboard/internal/broadcast"
	"github.com/Domenick1991/flightdashboard/internal/service/flights"
	"github.com/Domenick1991/flightdashboard/web"
)

const shutdownTimeout = 5 * time.Second

// Deps are the long-lived components the HTTP process serves.
type Deps struct {
	Flights flights.FlightUseCase
	Hub     *broadcast.Hub
	// Events receives every mutation event. Nil means the Hub alone.
	Events broadcast.Publisher
	Log    *zap.Logger
}

// Run starts the broadcast hub and the HTTP server and blocks until ctx is
// canceled or one of them fails.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewRouter(cfg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Hub.Run(gctx)
	})

	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", cfg.HTTP.Address), zap.String("hub", cfg.HTTP.HubPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen http %s: %w", cfg.HTTP.Address, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		log.Info("http server stopped")
		return nil
	})

	return g.Wait()
}

// NewRouter wires the flights API, the push channel, the dashboard page and the API docs.
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	events := deps.Events
	if events == nil {
		events = deps.Hub
	}

	var index bytes.Buffer
	if err := web.RenderIndex(&index, cfg.HTTP.HubPath); err != nil {
		log.Error("render dashboard", zap.Error(err))
	}

	r := gin.New()
	r.Use(api.Recovery(log), api.Logger(log))

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", index.Bytes())
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/docs/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", web.OpenAPI)
	})
	r.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/docs/openapi.json"))))

	api.NewFlightHandler(deps.Flights, events, log).Register(r.Group("/api/flights"))

	ws := broadcast.NewWSHandler(deps.Hub, broadcast.WSConfig{
		WriteWait: time.Duration(cfg.Broadcast.WriteWaitSeconds) * time.Second,
		PongWait:  time.Duration(cfg.Broadcast.PongWaitSeconds) * time.Second,
	}, log)
	r.GET(cfg.HTTP.HubPath, gin.WrapH(ws))

	return r
}
