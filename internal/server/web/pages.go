package web

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/timeboard/internal/common"
	"github.com/dmitrijs2005/timeboard/internal/server/filter"
	"github.com/dmitrijs2005/timeboard/internal/server/intake"
	"github.com/dmitrijs2005/timeboard/internal/server/models"
	"github.com/dmitrijs2005/timeboard/internal/server/sessions"
)

func (s *Server) registerPages() {
	s.app.Get("/", s.landing)

	tl := s.app.Group("/timeline")
	tl.Get("/", s.timelinePage)
	tl.Get("/events/new", s.newEvent)
	tl.Get("/events/:id/edit", s.editEvent)
	tl.Get("/events/:id/delete", s.confirmDelete)
	tl.Post("/events/:id/delete", s.deleteEvent)
	tl.Get("/drafts/:draft", s.draftForm)
	tl.Post("/drafts/:draft", s.submitDraft)
	tl.Post("/drafts/:draft/images", s.uploadImages)
	tl.Post("/drafts/:draft/images/:index/delete", s.removeImage)
	tl.Post("/drafts/:draft/cancel", s.cancelDraft)
}

func (s *Server) landing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).Render("landing", fiber.Map{
		"Title": "TimeBoard",
	})
}

type menuItem struct {
	Label  string
	Href   string
	Color  string
	Count  int
	Active bool
}

func (s *Server) timelinePage(c *fiber.Ctx) error {
	f := filter.FromQuery(c.Query("category"))
	ov := s.timeline.Overview(c.UserContext(), workspace(c), f)
	active, _ := f.Category()

	menu := []menuItem{{Label: "All", Href: "/timeline", Count: ov.Total, Active: f.IsAll()}}
	for _, name := range models.Categories() {
		menu = append(menu, menuItem{
			Label:  name,
			Href:   "/timeline?category=" + url.QueryEscape(name),
			Color:  models.CategoryColor(name),
			Count:  ov.Counts[name],
			Active: !f.IsAll() && active == name,
		})
	}

	return c.Render("timeline", fiber.Map{
		"Title":     "Timeline",
		"Menu":      menu,
		"Active":    active,
		"Groups":    ov.Groups,
		"HasEvents": len(ov.Events) > 0,
	})
}

func (s *Server) newEvent(c *fiber.Ctx) error {
	d, err := s.timeline.OpenDraft(c.UserContext(), workspace(c), 0)
	if err != nil {
		return err
	}
	return c.Redirect(draftPath(d), fiber.StatusSeeOther)
}

func (s *Server) editEvent(c *fiber.Ctx) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}
	d, err := s.timeline.OpenDraft(c.UserContext(), workspace(c), id)
	if err != nil {
		return err
	}
	return c.Redirect(draftPath(d), fiber.StatusSeeOther)
}

func (s *Server) confirmDelete(c *fiber.Ctx) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}
	e, err := s.timeline.Get(c.UserContext(), workspace(c), id)
	if errors.Is(err, common.ErrNotFound) {
		return c.Redirect("/timeline", fiber.StatusSeeOther)
	}
	if err != nil {
		return err
	}
	return c.Render("confirm_delete", fiber.Map{
		"Title": "Delete event",
		"Event": e,
	})
}

func (s *Server) deleteEvent(c *fiber.Ctx) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}
	s.timeline.Delete(c.UserContext(), workspace(c), id)
	return c.Redirect("/timeline", fiber.StatusSeeOther)
}

func (s *Server) draftForm(c *fiber.Ctx) error {
	d, err := s.timeline.Draft(workspace(c), c.Params("draft"))
	if err != nil {
		return err
	}
	return s.renderForm(c, d, fiber.StatusOK, nil, "")
}

func (s *Server) uploadImages(c *fiber.Ctx) error {
	ws := workspace(c)
	d, err := s.saveFields(c, ws)
	if err != nil {
		return err
	}

	files := uploadedFiles(c, "images")
	added, err := s.timeline.UploadImages(c.UserContext(), ws, d.ID, intake.FromFileHeaders(files))
	if err := c.UserContext().Err(); err != nil {
		return err
	}

	notice := ""
	if err != nil {
		notice = fmt.Sprintf("Added %d of %d images. The rest could not be read as images.", added, len(files))
	}
	return s.renderForm(c, d, fiber.StatusOK, nil, notice)
}

func (s *Server) removeImage(c *fiber.Ctx) error {
	ws := workspace(c)
	d, err := s.saveFields(c, ws)
	if err != nil {
		return err
	}

	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid image index")
	}
	if err := s.timeline.RemoveImage(ws, d.ID, index); err != nil {
		return err
	}
	return c.Redirect(draftPath(d), fiber.StatusSeeOther)
}

func (s *Server) submitDraft(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ws := workspace(c)

	d, err := s.timeline.Draft(ws, c.Params("draft"))
	if err != nil {
		return err
	}
	var fields models.EventInput
	if err := c.BodyParser(&fields); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form")
	}

	// Files still attached to the form are added before committing.
	if files := uploadedFiles(c, "images"); len(files) > 0 {
		d.SetFields(fields)
		if _, err := s.timeline.UploadImages(ctx, ws, d.ID, intake.FromFileHeaders(files)); err != nil {
			return s.renderForm(c, d, fiber.StatusUnprocessableEntity, nil,
				"Some images could not be read. Check the list below and save again.")
		}
	}

	_, err = s.timeline.SubmitDraft(ctx, ws, d.ID, fields)
	var verr *common.ValidationError
	switch {
	case errors.As(err, &verr):
		return s.renderForm(c, d, fiber.StatusUnprocessableEntity, verr.Fields, "")
	case errors.Is(err, common.ErrDraftBusy):
		return s.renderForm(c, d, fiber.StatusConflict, nil, "Images are still being processed. Please wait and save again.")
	case err != nil:
		return err
	}

	return c.Redirect("/timeline", fiber.StatusSeeOther)
}

func (s *Server) cancelDraft(c *fiber.Ctx) error {
	s.timeline.DiscardDraft(c.UserContext(), workspace(c), c.Params("draft"))
	return c.Redirect("/timeline", fiber.StatusSeeOther)
}

// saveFields keeps the values typed so far on the draft before an image
// action re-renders the form.
func (s *Server) saveFields(c *fiber.Ctx, ws *sessions.Workspace) (*sessions.Draft, error) {
	d, err := s.timeline.Draft(ws, c.Params("draft"))
	if err != nil {
		return nil, err
	}
	var fields models.EventInput
	if err := c.BodyParser(&fields); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid form")
	}
	d.SetFields(fields)
	return d, nil
}

func (s *Server) renderForm(c *fiber.Ctx, d *sessions.Draft, status int, fieldErrors map[string]string, notice string) error {
	in := d.Input()

	title := "New event"
	if !d.IsNew() {
		title = "Edit event"
	}

	return c.Status(status).Render("form", fiber.Map{
		"Title":      title,
		"Action":     draftPath(d),
		"Draft":      d,
		"Input":      in,
		"Images":     in.Images,
		"Errors":     fieldErrors,
		"Categories": categoryOptions(in.Category),
		"Busy":       d.Pending.Busy(),
		"Notice":     notice,
	})
}

// categoryOptions lists the registered categories, plus current when it is
// a custom one so editing does not silently change it.
func categoryOptions(current string) []string {
	opts := models.Categories()
	if current != "" && !models.IsRegistered(current) {
		opts = append(opts, current)
	}
	return opts
}

func draftPath(d *sessions.Draft) string {
	return "/timeline/drafts/" + d.ID
}

func eventID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusNotFound, "event not found")
	}
	return id, nil
}
