package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/timeboard/internal/server/intake"
	"github.com/dmitrijs2005/timeboard/internal/server/models"
	"github.com/dmitrijs2005/timeboard/internal/server/sessions"
)

// OpenDraft starts a form. editingID 0 opens an empty form with the default
// color and category; otherwise the form is prefilled from that event.
func (s *TimelineService) OpenDraft(ctx context.Context, ws *sessions.Workspace, editingID int64) (*sessions.Draft, error) {
	input := models.EventInput{Color: models.DefaultColor, Category: models.DefaultCategory}

	if editingID != 0 {
		e, err := ws.Events().Get(ctx, editingID)
		if err != nil {
			return nil, err
		}
		input = models.FromEvent(e)
	}

	d := sessions.NewDraft(editingID, input)
	if evicted := ws.AddDraft(d); evicted != "" {
		s.logger.Info(ctx, "stale draft dropped", "session", ws.ID(), "draft", evicted)
	}
	s.logger.Debug(ctx, "draft opened", "session", ws.ID(), "draft", d.ID, "editing", editingID)

	return d, nil
}

// Draft returns an open draft.
func (s *TimelineService) Draft(ws *sessions.Workspace, draftID string) (*sessions.Draft, error) {
	return ws.Draft(draftID)
}

// UploadImages appends a batch of files to the draft's pending images. Files
// that fail are skipped; the result counts the images added.
func (s *TimelineService) UploadImages(ctx context.Context, ws *sessions.Workspace, draftID string, sources []intake.Source) (int, error) {
	d, err := ws.Draft(draftID)
	if err != nil {
		return 0, err
	}

	added, err := d.Pending.Append(ctx, s.intake, sources)
	s.logger.Info(ctx, "draft images uploaded", "draft", d.ID, "added", added, "requested", len(sources), "pending", d.Pending.Len())
	return added, err
}

// RemoveImage drops one pending image of the draft.
func (s *TimelineService) RemoveImage(ws *sessions.Workspace, draftID string, index int) error {
	d, err := ws.Draft(draftID)
	if err != nil {
		return err
	}
	return d.Pending.Remove(index)
}

// SubmitDraft commits the draft with the given field values and the draft's
// pending images, then discards it. On a validation error the values are
// kept on the draft so the form can be shown again. A draft editing an event
// that has since been deleted is discarded without creating anything, and
// the zero Event is returned.
func (s *TimelineService) SubmitDraft(ctx context.Context, ws *sessions.Workspace, draftID string, fields models.EventInput) (models.Event, error) {
	d, err := ws.Draft(draftID)
	if err != nil {
		return models.Event{}, err
	}
	input, err := d.Commit(fields)
	if err != nil {
		return models.Event{}, fmt.Errorf("draft %s: %w", d.ID, err)
	}

	var e models.Event
	if d.IsNew() {
		e, err = s.Create(ctx, ws, input)
		if err != nil {
			d.Reopen()
			return models.Event{}, err
		}
	} else {
		ok, err := s.Update(ctx, ws, d.EditingID, input)
		if err != nil {
			d.Reopen()
			return models.Event{}, err
		}
		if ok {
			e, _ = ws.Events().Get(ctx, d.EditingID)
		}
	}

	ws.RemoveDraft(d.ID)
	return e, nil
}

// DiscardDraft drops the draft and its pending images. Unknown drafts are
// ignored.
func (s *TimelineService) DiscardDraft(ctx context.Context, ws *sessions.Workspace, draftID string) {
	ws.RemoveDraft(draftID)
	s.logger.Debug(ctx, "draft discarded", "session", ws.ID(), "draft", draftID)
}
