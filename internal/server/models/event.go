// Package models defines the timeline data entities and the category registry.
package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/timeboard/internal/common"
)

// DateLayout is the calendar date format of Event.Date. No time zone is implied.
const DateLayout = "2006-01-02"

const (
	// DefaultColor is applied to inputs that leave the color unset.
	DefaultColor = "#000000"
	// DefaultCategory is applied to inputs that leave the category unset.
	DefaultCategory = "Other"
	// AccentFallbackColor is used when a committed record has a blank color.
	AccentFallbackColor = "#FBBF24"
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Event is one committed timeline entry.
type Event struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Color       string   `json:"color"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
}

// Accent is the color used for the card dot, connector and buttons.
func (e Event) Accent() string {
	if e.Color == "" {
		return AccentFallbackColor
	}
	return e.Color
}

// CategoryColor is the badge color of the event's category.
func (e Event) CategoryColor() string {
	return CategoryColor(e.Category)
}

// PrimaryImage returns the first image, or "" when there is none.
func (e Event) PrimaryImage() string {
	if len(e.Images) == 0 {
		return ""
	}
	return e.Images[0]
}

// Clone returns a copy that shares no slice memory with e.
func (e Event) Clone() Event {
	e.Images = append([]string(nil), e.Images...)
	return e
}

// EventInput is everything a user supplies for an event; the id is assigned
// by the store.
type EventInput struct {
	Title       string   `json:"title" form:"title"`
	Description string   `json:"description" form:"description"`
	Date        string   `json:"date" form:"date"`
	Color       string   `json:"color" form:"color"`
	Category    string   `json:"category" form:"category"`
	Images      []string `json:"images" form:"images"`
}

// FromEvent returns the input that would recreate e.
func FromEvent(e Event) EventInput {
	return EventInput{
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Color:       e.Color,
		Category:    e.Category,
		Images:      append([]string(nil), e.Images...),
	}
}

// Normalize trims text fields, applies the color and category defaults and
// drops blank image entries.
func (in EventInput) Normalize() EventInput {
	out := EventInput{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Date:        strings.TrimSpace(in.Date),
		Color:       strings.TrimSpace(in.Color),
		Category:    strings.TrimSpace(in.Category),
		Images:      make([]string, 0, len(in.Images)),
	}
	if out.Color == "" {
		out.Color = DefaultColor
	}
	if out.Category == "" {
		out.Category = DefaultCategory
	}
	for _, img := range in.Images {
		if img = strings.TrimSpace(img); img != "" {
			out.Images = append(out.Images, img)
		}
	}
	return out
}

// Validate normalizes the input and checks the required fields. The error,
// if any, is a *common.ValidationError listing every offending field.
func (in EventInput) Validate() (EventInput, error) {
	out := in.Normalize()
	fields := map[string]string{}

	if out.Title == "" {
		fields["title"] = "Title is required"
	}
	if out.Description == "" {
		fields["description"] = "Description is required"
	}
	if out.Date == "" {
		fields["date"] = "Date is required"
	} else if _, err := time.Parse(DateLayout, out.Date); err != nil {
		fields["date"] = "Date must look like 2024-12-31"
	}
	if !hexColor.MatchString(out.Color) {
		fields["color"] = "Color must be a hex value such as #3B82F6"
	}
	for _, img := range out.Images {
		if !strings.HasPrefix(img, "data:image/") {
			fields["images"] = "Images must be inline data URIs"
			break
		}
	}

	if len(fields) > 0 {
		return out, &common.ValidationError{Fields: fields}
	}
	return out, nil
}

// Event builds the committed record for id.
func (in EventInput) Event(id int64) Event {
	return Event{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Color:       in.Color,
		Category:    in.Category,
		Images:      append([]string{}, in.Images...),
	}
}
