package web

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/timeboard/internal/common"
	"github.com/dmitrijs2005/timeboard/internal/server/sessions"
)

type localsKey string

const workspaceKey localsKey = "workspace"

// session attaches the visitor's workspace to the request, opening a fresh
// one when the token is missing, invalid or belongs to an evicted session.
// The token is reissued on every request so the cookie follows the idle
// window.
func (s *Server) session(c *fiber.Ctx) error {
	ctx := c.UserContext()

	token := c.Cookies(common.SessionCookieName)
	if token == "" {
		token = c.Get(common.SessionTokenHTTPHeader)
	}

	var ws *sessions.Workspace
	if token != "" {
		resolved, err := s.registry.Resolve(ctx, token)
		if err != nil {
			s.logger.Debug(ctx, "session token rejected", "error", err)
		} else {
			ws = resolved
		}
	}

	var err error
	if ws == nil {
		ws, token, err = s.registry.Open(ctx)
	} else {
		token, err = s.registry.Refresh(ws)
	}
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Set(common.SessionTokenHTTPHeader, token)
	c.Locals(workspaceKey, ws)

	return c.Next()
}

func workspace(c *fiber.Ctx) *sessions.Workspace {
	ws, _ := c.Locals(workspaceKey).(*sessions.Workspace)
	return ws
}

// accessLog writes one line per request through the server logger. Errors
// are rendered here so the logged status is the one the client sees.
func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := s.handleError(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	s.logger.Info(c.UserContext(), "http request",
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	)
	return nil
}
