// Package server is the web console: every page is a Fiber handler that
// calls the metering backend and renders an HTML template.
package server

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/rs/zerolog"

	"github.com/Integrity-Ltd/energymeter-admin/internal/api"
	"github.com/Integrity-Ltd/energymeter-admin/internal/config"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Server struct {
	app    *fiber.App
	api    *api.Client
	log    zerolog.Logger
	status *statusHub
}

func New(client *api.Client, log zerolog.Logger) *Server {
	s := &Server{
		api:    client,
		log:    log,
		status: newStatusHub(),
	}

	engine := html.NewFileSystem(http.FS(templatesFS), ".html")
	s.app = fiber.New(fiber.Config{
		Views:                 engine,
		ViewsLayout:           "templates/layout",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				s.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
			}
			return c.Status(code).SendString(err.Error())
		},
	})

	s.app.Use(s.requestLogger())
	s.routes()

	go s.status.run()
	go s.pollBackend()

	return s
}

func (s *Server) routes() {
	s.app.Get("/healthz", s.handleHealthz)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app.Get("/", s.handleReport)
	s.app.Get("/report/export.csv", s.handleReportExport)

	s.app.Get("/energymeter", s.handleMeterList)
	s.app.Get("/energymeter/export.csv", s.handleMeterExport)
	s.app.Get("/energymeter/new", s.handleMeterNew)
	s.app.Post("/energymeter", s.handleMeterCreate)
	s.app.Get("/energymeter/:id/edit", s.handleMeterEdit)
	s.app.Post("/energymeter/:id", s.handleMeterUpdate)
	s.app.Get("/energymeter/:id/delete", s.handleMeterDeleteConfirm)
	s.app.Post("/energymeter/:id/delete", s.handleMeterDelete)

	s.app.Get("/channels", s.handleChannelList)
	s.app.Get("/channels/export.csv", s.handleChannelExport)
	s.app.Get("/channels/new", s.handleChannelNew)
	s.app.Post("/channels", s.handleChannelCreate)
	s.app.Get("/channels/:id/edit", s.handleChannelEdit)
	s.app.Post("/channels/:id", s.handleChannelUpdate)
	s.app.Get("/channels/:id/delete", s.handleChannelDeleteConfirm)
	s.app.Post("/channels/:id/delete", s.handleChannelDelete)
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(5 * time.Second)
}

func (s *Server) handleHealthz(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), config.APITimeout())
	defer cancel()

	backend := statusOnline
	if err := s.api.Health(ctx); err != nil {
		backend = statusOffline
	}
	return c.JSON(fiber.Map{"status": "ok", "backend": backend})
}

// queryValues copies the fasthttp query args into a url.Values for the
// parsers shared with the API client.
func queryValues(c *fiber.Ctx) url.Values {
	q := url.Values{}
	c.Context().QueryArgs().VisitAll(func(key, val []byte) {
		q.Add(string(key), string(val))
	})
	return q
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}
