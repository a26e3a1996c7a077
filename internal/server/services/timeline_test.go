package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/timeboard/internal/common"
	"github.com/dmitrijs2005/timeboard/internal/logging"
	"github.com/dmitrijs2005/timeboard/internal/server/filter"
	"github.com/dmitrijs2005/timeboard/internal/server/intake"
	"github.com/dmitrijs2005/timeboard/internal/server/metrics"
	"github.com/dmitrijs2005/timeboard/internal/server/models"
	"github.com/dmitrijs2005/timeboard/internal/server/sessions"
)

// --- helpers ---

type fakeRecorder struct {
	mu        sync.Mutex
	mutations map[string]int
	misses    map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{mutations: map[string]int{}, misses: map[string]int{}}
}

func (r *fakeRecorder) EventMutated(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations[op]++
}

func (r *fakeRecorder) LookupMissed(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses[op]++
}

type warnLogger struct {
	logging.Nop
	mu    *sync.Mutex
	warns *[]string
}

func newWarnLogger() warnLogger {
	return warnLogger{mu: &sync.Mutex{}, warns: &[]string{}}
}

func (l warnLogger) Warn(_ context.Context, msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.warns = append(*l.warns, msg)
}

func (l warnLogger) With(...any) logging.Logger { return l }

func (l warnLogger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), *l.warns...)
}

func newService(t *testing.T) (*TimelineService, *sessions.Workspace, *fakeRecorder, warnLogger) {
	t.Helper()
	logger := newWarnLogger()
	rec := newFakeRecorder()
	svc := NewTimelineService(intake.New(intake.DefaultOptions(), logger, nil), logger, rec)

	reg := sessions.NewRegistry([]byte("k"), time.Hour, logging.Nop{}, nil)
	ws, _, err := reg.Open(context.Background())
	require.NoError(t, err)

	return svc, ws, rec, logger
}

func validInput(title, category string) models.EventInput {
	return models.EventInput{
		Title:       title,
		Description: title + " description",
		Date:        "2024-06-01",
		Color:       "#FF0000",
		Category:    category,
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{B: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// --- tests ---

func TestTimelineService_CreateListFilter(t *testing.T) {
	ctx := context.Background()
	svc, ws, rec, _ := newService(t)

	trip, err := svc.Create(ctx, ws, validInput("Trip", "Travel"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, ws, validInput("Standup", "Work"))
	require.NoError(t, err)

	all := svc.List(ctx, ws, filter.All())
	require.Len(t, all, 2)
	assert.Equal(t, "Trip", all[0].Title)
	assert.Equal(t, "Standup", all[1].Title)

	travel := svc.List(ctx, ws, filter.ByCategory("Travel"))
	require.Len(t, travel, 1)
	assert.Equal(t, trip.ID, travel[0].ID)
	assert.Equal(t, models.FallbackCategoryColor, travel[0].CategoryColor())

	assert.Equal(t, 2, rec.mutations[metrics.OpCreate])
}

func TestTimelineService_CreateRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, ws, rec, _ := newService(t)

	_, err := svc.Create(ctx, ws, models.EventInput{Title: "No date"})
	require.ErrorIs(t, err, common.ErrValidation)

	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "date")
	assert.Contains(t, verr.Fields, "description")

	assert.Equal(t, 0, ws.Events().Len())
	assert.Equal(t, 0, rec.mutations[metrics.OpCreate])
}

func TestTimelineService_UpdateAndDeleteMisses(t *testing.T) {
	ctx := context.Background()
	svc, ws, rec, logger := newService(t)

	e, err := svc.Create(ctx, ws, validInput("A", "Work"))
	require.NoError(t, err)

	ok, err := svc.Update(ctx, ws, e.ID+1000, validInput("Ghost", "Work"))
	require.NoError(t, err)
	assert.False(t, ok)

	assert.False(t, svc.Delete(ctx, ws, e.ID+1000))

	got, err := svc.Get(ctx, ws, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)

	assert.Equal(t, 1, rec.misses[metrics.OpUpdate])
	assert.Equal(t, 1, rec.misses[metrics.OpDelete])
	assert.Len(t, logger.Warnings(), 2)
}

func TestTimelineService_UpdateKeepsPosition(t *testing.T) {
	ctx := context.Background()
	svc, ws, _, _ := newService(t)

	a, _ := svc.Create(ctx, ws, validInput("A", "Work"))
	b, _ := svc.Create(ctx, ws, validInput("B", "Work"))
	c, _ := svc.Create(ctx, ws, validInput("C", "Work"))

	ok, err := svc.Update(ctx, ws, b.ID, validInput("B2", "Notes"))
	require.NoError(t, err)
	assert.True(t, ok)

	var titles []string
	for _, e := range svc.List(ctx, ws, filter.All()) {
		titles = append(titles, e.Title)
	}
	if diff := cmp.Diff([]string{"A", "B2", "C"}, titles); diff != "" {
		t.Fatalf("titles mismatch (-want +got):\n%s", diff)
	}

	assert.True(t, svc.Delete(ctx, ws, b.ID))
	ids := []int64{}
	for _, e := range svc.List(ctx, ws, filter.All()) {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int64{a.ID, c.ID}, ids)
}

func TestTimelineService_Overview(t *testing.T) {
	ctx := context.Background()
	svc, ws, _, _ := newService(t)

	in := validInput("June", "Work")
	_, _ = svc.Create(ctx, ws, in)
	in.Title, in.Date, in.Category = "July", "2024-07-04", "Personal"
	_, _ = svc.Create(ctx, ws, in)
	in.Title, in.Date = "July again", "2024-07-20"
	_, _ = svc.Create(ctx, ws, in)

	ov := svc.Overview(ctx, ws, filter.ByCategory("Personal"))
	assert.Equal(t, 3, ov.Total)
	require.Len(t, ov.Events, 2)
	require.Len(t, ov.Groups, 1)
	assert.Equal(t, "July 2024", ov.Groups[0].Month)
	assert.Equal(t, 1, ov.Counts["Work"])
	assert.Equal(t, 2, ov.Counts["Personal"])
	assert.Equal(t, 0, ov.Counts["Notes"])
}

func TestTimelineService_EncodeUploads(t *testing.T) {
	svc, _, _, _ := newService(t)

	uris, err := svc.EncodeUploads(context.Background(), []intake.Source{
		intake.FromBytes("a.png", pngBytes(t, 4, 4)),
		intake.FromBytes("bad.png", []byte("nope")),
		intake.FromBytes("b.png", pngBytes(t, 6, 6)),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrImageDecode)
	require.Len(t, uris, 2)
	for i, uri := range uris {
		assert.Contains(t, uri, "data:image/png;base64,", fmt.Sprintf("uri %d", i))
	}
}
