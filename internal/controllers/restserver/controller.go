// Package restserver serves detection results over a read-only REST API.
package restserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/seastate/heatwave/internal/database"
	"github.com/seastate/heatwave/pkg/config"
)

// Controller represents the REST server controller
type Controller struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	httpCfg  config.HTTPData
	Server   http.Server
	DB       *database.Client
	logger   *zap.SugaredLogger
	handlers *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, httpCfg config.HTTPData, db *database.Client, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		ctx:     ctx,
		wg:      wg,
		httpCfg: httpCfg,
		DB:      db,
		logger:  logger,
	}
	ctrl.handlers = NewHandlers(db, logger)

	ctrl.Server = http.Server{
		Addr:         httpCfg.ListenAddr,
		Handler:      ctrl.setupRouter(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return ctrl, nil
}

func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", c.handlers.Health).Methods(http.MethodGet)
	router.HandleFunc("/events/{pixel}", c.handlers.EventsForPixel).Methods(http.MethodGet)
	router.HandleFunc("/counts/{pixel}", c.handlers.CountsForPixel).Methods(http.MethodGet)
	router.HandleFunc("/jobs/{id}", c.handlers.Job).Methods(http.MethodGet)
	return router
}

// Start runs the HTTP server until the controller context is cancelled.
func (c *Controller) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.logger.Infof("REST server listening on %s", c.httpCfg.ListenAddr)
		if err := c.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Errorf("REST server error: %v", err)
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Server.Shutdown(shutdownCtx); err != nil {
			c.logger.Warnf("REST server shutdown: %v", err)
		}
	}()
}
