package web

import (
	"encoding/base64"
	"fmt"
	"maps"
	"mime/multipart"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/dmitrijs2005/timeboard/internal/common"
	"github.com/dmitrijs2005/timeboard/internal/server/filter"
	"github.com/dmitrijs2005/timeboard/internal/server/intake"
	"github.com/dmitrijs2005/timeboard/internal/server/models"
)

func (s *Server) registerAPI() {
	api := s.app.Group("/api", cors.New(cors.Config{
		ExposeHeaders: common.SessionTokenHTTPHeader,
	}))

	api.Get("/categories", s.listCategoriesAPI)

	events := api.Group("/events")
	events.Get("/", s.listEventsAPI)
	events.Post("/", s.createEventAPI)
	events.Get("/:id", s.getEventAPI)
	events.Put("/:id", s.updateEventAPI)
	events.Delete("/:id", s.deleteEventAPI)
}

// upload is a raw image file sent inside a JSON body.
type upload struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

type eventRequest struct {
	models.EventInput
	Uploads []upload `json:"uploads"`
}

type categoryInfo struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

func (s *Server) listEventsAPI(c *fiber.Ctx) error {
	events := s.timeline.List(c.UserContext(), workspace(c), filter.FromQuery(c.Query("category")))
	return c.JSON(fiber.Map{
		"success": true,
		"events":  events,
		"count":   len(events),
	})
}

func (s *Server) getEventAPI(c *fiber.Ctx) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}
	e, err := s.timeline.Get(c.UserContext(), workspace(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"event":   e,
	})
}

func (s *Server) createEventAPI(c *fiber.Ctx) error {
	input, err := s.parseEventRequest(c)
	if err != nil {
		return err
	}

	e, err := s.timeline.Create(c.UserContext(), workspace(c), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"event":   e,
	})
}

func (s *Server) updateEventAPI(c *fiber.Ctx) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}
	input, err := s.parseEventRequest(c)
	if err != nil {
		return err
	}

	updated, err := s.timeline.Update(c.UserContext(), workspace(c), id, input)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"updated": updated,
	})
}

func (s *Server) deleteEventAPI(c *fiber.Ctx) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}
	if !c.QueryBool("confirm") {
		return fiber.NewError(fiber.StatusBadRequest, "deletion must be confirmed with confirm=true")
	}

	deleted := s.timeline.Delete(c.UserContext(), workspace(c), id)
	return c.JSON(fiber.Map{
		"success": true,
		"deleted": deleted,
	})
}

func (s *Server) listCategoriesAPI(c *fiber.Ctx) error {
	counts := s.timeline.Overview(c.UserContext(), workspace(c), filter.All()).Counts

	out := make([]categoryInfo, 0, len(counts))
	for _, name := range models.Categories() {
		out = append(out, categoryInfo{Name: name, Color: models.CategoryColor(name), Count: counts[name]})
	}
	for _, name := range slices.Sorted(maps.Keys(counts)) {
		if !models.IsRegistered(name) {
			out = append(out, categoryInfo{Name: name, Color: models.CategoryColor(name), Count: counts[name]})
		}
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"categories": out,
	})
}

// parseEventRequest reads a JSON or multipart body. Raw files ("uploads")
// go through image intake and are appended after the given data URIs.
func (s *Server) parseEventRequest(c *fiber.Ctx) (models.EventInput, error) {
	var (
		input   models.EventInput
		sources []intake.Source
	)

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if err := c.BodyParser(&input); err != nil {
			return input, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		sources = intake.FromFileHeaders(uploadedFiles(c, "uploads"))
	} else {
		var req eventRequest
		if err := c.BodyParser(&req); err != nil {
			return input, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		input = req.EventInput
		for i, u := range req.Uploads {
			data, err := base64.StdEncoding.DecodeString(u.Data)
			if err != nil {
				return input, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("upload %d is not valid base64", i))
			}
			sources = append(sources, intake.FromBytes(u.Name, data))
		}
	}

	if len(sources) > 0 {
		uris, err := s.timeline.EncodeUploads(c.UserContext(), sources)
		if err != nil {
			return input, err
		}
		input.Images = append(input.Images, uris...)
	}

	return input, nil
}

func uploadedFiles(c *fiber.Ctx, field string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	return form.File[field]
}
