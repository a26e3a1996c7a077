// Package filter derives the visible part of a timeline. Everything here is
// pure and cheap enough to recompute on every render.
package filter

import (
	"strings"

	"github.com/dmitrijs2005/timeboard/internal/server/models"
)

// Filter selects events by category. The zero value selects everything.
type Filter struct {
	category string
	set      bool
}

// All selects every event.
func All() Filter {
	return Filter{}
}

// ByCategory selects events whose category equals c exactly.
func ByCategory(c string) Filter {
	return Filter{category: c, set: true}
}

// FromQuery builds a filter from a raw ?category= value; blank means All.
func FromQuery(raw string) Filter {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return All()
	}
	return ByCategory(raw)
}

// Category returns the selected category and whether one is selected.
func (f Filter) Category() (string, bool) {
	return f.category, f.set
}

// IsAll reports whether the filter selects everything.
func (f Filter) IsAll() bool {
	return !f.set
}

// Matches reports whether e passes the filter.
func (f Filter) Matches(e models.Event) bool {
	return !f.set || e.Category == f.category
}

// Apply returns the events passing f, in their original order. With All the
// input slice is returned as is.
func Apply(events []models.Event, f Filter) []models.Event {
	if f.IsAll() {
		return events
	}

	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}
