// Package sessions keeps one in-memory workspace per visitor and evicts it
// once the visitor has been idle for too long.
package sessions

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/timeboard/internal/common"
	"github.com/dmitrijs2005/timeboard/internal/server/intake"
	"github.com/dmitrijs2005/timeboard/internal/server/models"
	"github.com/dmitrijs2005/timeboard/internal/server/repositories/events"
)

// MaxDrafts is how many drafts a workspace keeps open. Opening one more
// drops the least recently used.
const MaxDrafts = 16

// Workspace is the event store of one session plus its open drafts.
type Workspace struct {
	id     string
	events events.Repository

	mu     sync.Mutex
	drafts map[string]*Draft
	seq    uint64
}

func newWorkspace(id string, repo events.Repository) *Workspace {
	return &Workspace{id: id, events: repo, drafts: make(map[string]*Draft)}
}

func (w *Workspace) ID() string { return w.id }

// Events returns the workspace store.
func (w *Workspace) Events() events.Repository { return w.events }

// AddDraft registers d under its id. At MaxDrafts the least recently used
// draft is dropped first and its id returned; otherwise evicted is "".
func (w *Workspace) AddDraft(d *Draft) (evicted string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.drafts) >= MaxDrafts {
		var oldest *Draft
		for _, o := range w.drafts {
			if oldest == nil || o.used < oldest.used {
				oldest = o
			}
		}
		delete(w.drafts, oldest.ID)
		evicted = oldest.ID
	}

	w.seq++
	d.used = w.seq
	w.drafts[d.ID] = d
	return evicted
}

// Draft looks up an open draft and marks it as used.
func (w *Workspace) Draft(id string) (*Draft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	d, ok := w.drafts[id]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", id, common.ErrNotFound)
	}
	w.seq++
	d.used = w.seq
	return d, nil
}

// RemoveDraft forgets a draft; unknown ids are ignored.
func (w *Workspace) RemoveDraft(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.drafts, id)
}

// Drafts returns the number of open drafts.
func (w *Workspace) Drafts() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.drafts)
}

// Draft is an open create or edit form.
type Draft struct {
	ID string
	// EditingID is the record being edited, 0 for a new one.
	EditingID int64
	Pending   *intake.Pending

	// used orders drafts by last access; guarded by the workspace lock.
	used uint64

	mu     sync.Mutex
	fields models.EventInput
}

// NewDraft starts a draft prefilled with input; its images seed the
// pending list.
func NewDraft(editingID int64, input models.EventInput) *Draft {
	d := &Draft{
		ID:        uuid.NewString(),
		EditingID: editingID,
		Pending:   intake.NewPending(input.Images),
	}
	d.SetFields(input)
	return d
}

// IsNew reports whether the draft creates a record rather than editing one.
func (d *Draft) IsNew() bool { return d.EditingID == 0 }

// SetFields stores the text fields of in. Images are owned by Pending and
// are ignored here.
func (d *Draft) SetFields(in models.EventInput) {
	d.mu.Lock()
	defer d.mu.Unlock()
	in.Images = nil
	d.fields = in
}

// Input returns the current field values together with the pending images.
func (d *Draft) Input() models.EventInput {
	d.mu.Lock()
	in := d.fields
	d.mu.Unlock()

	in.Images = d.Pending.Images()
	return in
}

// Commit stores fields and returns the input to persist, with the pending
// images sealed so no batch can start or land until Reopen. It fails with
// common.ErrDraftBusy while a batch is in flight.
func (d *Draft) Commit(fields models.EventInput) (models.EventInput, error) {
	images, err := d.Pending.Seal()
	if err != nil {
		return models.EventInput{}, err
	}

	d.SetFields(fields)

	d.mu.Lock()
	in := d.fields
	d.mu.Unlock()

	in.Images = images
	return in, nil
}

// Reopen undoes Commit after a failed save.
func (d *Draft) Reopen() { d.Pending.Unseal() }
