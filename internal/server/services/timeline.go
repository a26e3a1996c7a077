// Package services contains the timeline business logic shared by the web,
// JSON and gRPC transports.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/timeboard/internal/logging"
	"github.com/dmitrijs2005/timeboard/internal/server/filter"
	"github.com/dmitrijs2005/timeboard/internal/server/intake"
	"github.com/dmitrijs2005/timeboard/internal/server/metrics"
	"github.com/dmitrijs2005/timeboard/internal/server/models"
	"github.com/dmitrijs2005/timeboard/internal/server/sessions"
)

// Recorder counts store mutations.
type Recorder interface {
	EventMutated(op string)
	LookupMissed(op string)
}

type nopRecorder struct{}

func (nopRecorder) EventMutated(string) {}
func (nopRecorder) LookupMissed(string) {}

// TimelineService operates on the event store of a session workspace.
type TimelineService struct {
	intake   *intake.Intake
	logger   logging.Logger
	recorder Recorder
}

// NewTimelineService wires the service. recorder may be nil.
func NewTimelineService(in *intake.Intake, logger logging.Logger, recorder Recorder) *TimelineService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &TimelineService{
		intake:   in,
		logger:   logger.With("module", "timeline"),
		recorder: recorder,
	}
}

// Overview is everything the timeline page shows.
type Overview struct {
	Filter filter.Filter
	Events []models.Event
	Groups []filter.MonthGroup
	// Counts covers the whole store, not just the filtered events.
	Counts map[string]int
	Total  int
}

// List returns the events passing f in store order.
func (s *TimelineService) List(ctx context.Context, ws *sessions.Workspace, f filter.Filter) []models.Event {
	return filter.Apply(ws.Events().List(ctx), f)
}

// Get returns one event; a missing id wraps common.ErrNotFound.
func (s *TimelineService) Get(ctx context.Context, ws *sessions.Workspace, id int64) (models.Event, error) {
	return ws.Events().Get(ctx, id)
}

// Overview builds the filtered timeline with month groups and category counts.
func (s *TimelineService) Overview(ctx context.Context, ws *sessions.Workspace, f filter.Filter) Overview {
	all := ws.Events().List(ctx)
	visible := filter.Apply(all, f)

	return Overview{
		Filter: f,
		Events: visible,
		Groups: filter.GroupByMonth(visible),
		Counts: filter.CountByCategory(all),
		Total:  len(all),
	}
}

// Create validates input and appends a new event.
func (s *TimelineService) Create(ctx context.Context, ws *sessions.Workspace, input models.EventInput) (models.Event, error) {
	valid, err := input.Validate()
	if err != nil {
		return models.Event{}, err
	}

	e := ws.Events().Create(ctx, valid)
	s.recorder.EventMutated(metrics.OpCreate)
	s.logger.Info(ctx, "event created", "session", ws.ID(), "id", e.ID, "category", e.Category, "images", len(e.Images))

	return e, nil
}

// Update validates input and replaces event id in place. An unknown id is
// not an error: it is logged and reported as false.
func (s *TimelineService) Update(ctx context.Context, ws *sessions.Workspace, id int64, input models.EventInput) (bool, error) {
	valid, err := input.Validate()
	if err != nil {
		return false, err
	}

	if !ws.Events().Update(ctx, id, valid) {
		s.recorder.LookupMissed(metrics.OpUpdate)
		s.logger.Warn(ctx, "update of unknown event ignored", "session", ws.ID(), "id", id)
		return false, nil
	}

	s.recorder.EventMutated(metrics.OpUpdate)
	s.logger.Info(ctx, "event updated", "session", ws.ID(), "id", id)
	return true, nil
}

// Delete removes event id. An unknown id is logged and reported as false.
func (s *TimelineService) Delete(ctx context.Context, ws *sessions.Workspace, id int64) bool {
	if !ws.Events().Delete(ctx, id) {
		s.recorder.LookupMissed(metrics.OpDelete)
		s.logger.Warn(ctx, "delete of unknown event ignored", "session", ws.ID(), "id", id)
		return false
	}

	s.recorder.EventMutated(metrics.OpDelete)
	s.logger.Info(ctx, "event deleted", "session", ws.ID(), "id", id)
	return true
}

// EncodeUploads runs raw files through intake outside of any draft and
// returns the data URIs of the files that succeeded, in order, along with
// the joined errors of those that did not.
func (s *TimelineService) EncodeUploads(ctx context.Context, sources []intake.Source) ([]string, error) {
	p := intake.NewPending(nil)
	if _, err := p.Append(ctx, s.intake, sources); err != nil {
		return p.Images(), fmt.Errorf("encode uploads: %w", err)
	}
	return p.Images(), nil
}
