package filter

import (
	"time"

	"github.com/dmitrijs2005/timeboard/internal/server/models"
)

// UndatedGroup heads events whose date does not parse.
const UndatedGroup = "Undated"

// MonthGroup is a run of consecutive events sharing a month heading.
type MonthGroup struct {
	Month  string
	Events []models.Event
}

// GroupByMonth splits events into runs headed "January 2006". Store order is
// kept, so a month can appear twice if the user entered events out of order.
func GroupByMonth(events []models.Event) []MonthGroup {
	var groups []MonthGroup

	for _, e := range events {
		month := UndatedGroup
		if d, err := time.Parse(models.DateLayout, e.Date); err == nil {
			month = d.Format("January 2006")
		}

		if n := len(groups); n > 0 && groups[n-1].Month == month {
			groups[n-1].Events = append(groups[n-1].Events, e)
			continue
		}
		groups = append(groups, MonthGroup{Month: month, Events: []models.Event{e}})
	}

	return groups
}

// CountByCategory counts events per category. Registered categories are
// always present, with zero when unused.
func CountByCategory(events []models.Event) map[string]int {
	counts := make(map[string]int)
	for _, c := range models.Categories() {
		counts[c] = 0
	}
	for _, e := range events {
		counts[e.Category]++
	}
	return counts
}
