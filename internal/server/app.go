// Package server wires the TimeBoard components together and runs the HTTP
// and gRPC servers until the process is asked to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/timeboard/internal/logging"
	"github.com/dmitrijs2005/timeboard/internal/server/config"
	"github.com/dmitrijs2005/timeboard/internal/server/intake"
	"github.com/dmitrijs2005/timeboard/internal/server/metrics"
	"github.com/dmitrijs2005/timeboard/internal/server/services"
	"github.com/dmitrijs2005/timeboard/internal/server/sessions"
	"github.com/dmitrijs2005/timeboard/internal/server/web"

	gs "github.com/dmitrijs2005/timeboard/internal/server/grpc"
)

// minSweepInterval keeps the janitor from spinning on very short TTLs.
const minSweepInterval = time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	metrics  *metrics.Metrics
	registry *sessions.Registry
	timeline *services.TimelineService
}

// NewApp wires the components from c. It refuses a configuration the servers
// could not run with.
func NewApp(c *config.Config) (*App, error) {

	if err := validate(c); err != nil {
		return nil, err
	}

	logger := logging.New(os.Stdout, c.LogLevel)
	m := metrics.New()

	registry := sessions.NewRegistry([]byte(c.SecretKey), c.SessionTTL, logger, m)

	in := intake.New(intake.Options{
		MaxBytes:     c.ImageMaxBytes,
		MaxDimension: c.ImageMaxDimension,
		Quality:      c.ImageQuality,
		MaxPixels:    c.ImageMaxPixels,
	}, logger, m)

	timeline := services.NewTimelineService(in, logger, m)

	return &App{config: c, logger: logger, metrics: m, registry: registry, timeline: timeline}, nil
}

func validate(c *config.Config) error {
	switch {
	case c.SecretKey == "":
		return errors.New("config: secret key must not be empty")
	case c.SessionTTL <= 0:
		return fmt.Errorf("config: session ttl must be positive, got %v", c.SessionTTL)
	case c.BodyLimit <= 0:
		return fmt.Errorf("config: body limit must be positive, got %d", c.BodyLimit)
	case c.HTTPAddr == c.GRPCAddr && !strings.HasSuffix(c.HTTPAddr, ":0"):
		return fmt.Errorf("config: http and grpc cannot share address %q", c.HTTPAddr)
	}
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.GRPCAddr, app.config.BodyLimit, app.logger, app.registry, app.timeline)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := web.NewServer(app.config, app.logger, app.registry, app.timeline, app.metrics.Handler())

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) sweepInterval() time.Duration {
	return max(app.config.SessionTTL/4, minSweepInterval)
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "http", app.config.HTTPAddr, "grpc", app.config.GRPCAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.registry.Run(ctx, app.sweepInterval())
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
}
