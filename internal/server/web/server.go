// Package web serves the timeline pages, the JSON API and the operational
// endpoints over fiber.
package web

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/dmitrijs2005/timeboard/internal/logging"
	"github.com/dmitrijs2005/timeboard/internal/server/config"
	"github.com/dmitrijs2005/timeboard/internal/server/services"
	"github.com/dmitrijs2005/timeboard/internal/server/sessions"
)

//go:embed views
var viewsFS embed.FS

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const shutdownTimeout = 5 * time.Second

type Server struct {
	app      *fiber.App
	address  string
	registry *sessions.Registry
	timeline *services.TimelineService
	logger   logging.Logger
}

// NewServer builds the fiber application. metrics is mounted on /metrics.
func NewServer(cfg *config.Config, l logging.Logger, registry *sessions.Registry, timeline *services.TimelineService, metrics http.Handler) (*Server, error) {
	s := &Server{
		address:  cfg.HTTPAddr,
		registry: registry,
		timeline: timeline,
		logger:   l.With("module", "web_server"),
	}

	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(views), ".html")
	engine.AddFunc("imgsrc", imageSource)
	engine.AddFunc("cssColor", cssColor)
	engine.AddFunc("add", func(a, b int) int { return a + b })

	s.app = fiber.New(fiber.Config{
		Views:                 engine,
		ViewsLayout:           "layouts/main",
		ErrorHandler:          s.handleError,
		BodyLimit:             cfg.BodyLimit,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
	})

	s.app.Use(requestid.New())
	s.app.Use(s.accessLog)
	s.app.Use(recover.New())

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	s.app.Get("/metrics", adaptor.HTTPHandler(metrics))

	s.app.Use(s.session)

	s.registerPages()
	s.registerAPI()

	s.app.Use(s.fallback)

	return s, nil
}

// App exposes the fiber application, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens on the configured address until ctx is cancelled, then shuts
// the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
	go func() {
		errCh <- s.app.Listen(s.address)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		return s.app.ShutdownWithTimeout(shutdownTimeout)
	}
}

func (s *Server) fallback(c *fiber.Ctx) error {
	if isAPI(c) {
		return fiber.ErrNotFound
	}
	return s.landing(c)
}

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api")
}

// imageSource marks stored data URIs as safe for <img src>. Anything that is
// not an inline image is dropped.
func imageSource(uri string) template.URL {
	if !strings.HasPrefix(uri, "data:image/") {
		return ""
	}
	return template.URL(uri)
}

// cssColor passes hex colors through to style attributes.
func cssColor(c string) template.CSS {
	if len(c) < 4 || c[0] != '#' {
		return ""
	}
	for _, r := range c[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return ""
		}
	}
	return template.CSS(c)
}
