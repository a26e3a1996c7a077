package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/timeboard/internal/common"
	"github.com/dmitrijs2005/timeboard/internal/server/models"
)

// MemoryRepository keeps events in insertion order in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	items  []models.Event
	lastID int64
	now    func() time.Time
}

// NewMemoryRepository returns an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

// nextID derives ids from the wall clock in milliseconds, bumped past the
// previous id so that two creates in the same millisecond stay unique and
// ids keep increasing even if the clock steps back.
func (r *MemoryRepository) nextID() int64 {
	id := r.now().UnixMilli()
	if id <= r.lastID {
		id = r.lastID + 1
	}
	r.lastID = id
	return id
}

func (r *MemoryRepository) Create(ctx context.Context, input models.EventInput) models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := input.Event(r.nextID())
	r.items = append(r.items, e)

	return e.Clone()
}

func (r *MemoryRepository) Update(ctx context.Context, id int64, input models.EventInput) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	r.items[i] = input.Event(id)

	return true
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	r.items = append(r.items[:i], r.items[i+1:]...)

	return true
}

func (r *MemoryRepository) Get(ctx context.Context, id int64) (models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Event{}, fmt.Errorf("event %d: %w", id, common.ErrNotFound)
	}

	return r.items[i].Clone(), nil
}

// List returns a snapshot of the collection; callers may modify it freely.
func (r *MemoryRepository) List(ctx context.Context) []models.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Event, len(r.items))
	for i, e := range r.items {
		out[i] = e.Clone()
	}

	return out
}

func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *MemoryRepository) indexOf(id int64) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}
