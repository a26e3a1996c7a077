package models

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/timeboard/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() EventInput {
	return EventInput{
		Title:       "Trip",
		Description: "Lisbon",
		Date:        "2024-05-01",
		Color:       "#10B981",
		Category:    "Travel",
	}
}

func TestEventInput_Validate_AppliesDefaults(t *testing.T) {
	in := validInput()
	in.Title = "  Trip  "
	in.Color = ""
	in.Category = ""
	in.Images = []string{"", "data:image/jpeg;base64,AAAA", "  "}

	out, err := in.Validate()
	require.NoError(t, err)

	assert.Equal(t, "Trip", out.Title)
	assert.Equal(t, DefaultColor, out.Color)
	assert.Equal(t, DefaultCategory, out.Category)
	assert.Equal(t, []string{"data:image/jpeg;base64,AAAA"}, out.Images)
}

func TestEventInput_Validate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EventInput)
		field  string
	}{
		{"blank title", func(in *EventInput) { in.Title = "   " }, "title"},
		{"blank description", func(in *EventInput) { in.Description = "" }, "description"},
		{"missing date", func(in *EventInput) { in.Date = "" }, "date"},
		{"malformed date", func(in *EventInput) { in.Date = "01/05/2024" }, "date"},
		{"bad color", func(in *EventInput) { in.Color = "green" }, "color"},
		{"non data uri image", func(in *EventInput) { in.Images = []string{"https://example.com/a.png"} }, "images"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := in.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrValidation))

			var ve *common.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestEvent_ColorsAndImages(t *testing.T) {
	e := validInput().Event(1)
	assert.Equal(t, FallbackCategoryColor, e.CategoryColor(), "Travel is not registered")
	assert.Equal(t, "#10B981", e.Accent())
	assert.Empty(t, e.PrimaryImage())
	assert.NotNil(t, e.Images)

	e.Color = ""
	e.Images = []string{"data:image/png;base64,AA", "data:image/png;base64,BB"}
	assert.Equal(t, AccentFallbackColor, e.Accent())
	assert.Equal(t, "data:image/png;base64,AA", e.PrimaryImage())

	c := e.Clone()
	c.Images[0] = "changed"
	assert.Equal(t, "data:image/png;base64,AA", e.Images[0])
}

func TestFromEvent_RoundTripsFields(t *testing.T) {
	e := Event{ID: 9, Title: "t", Description: "d", Date: "2024-01-02", Color: "#fff", Category: "Work", Images: []string{"x"}}
	in := FromEvent(e)
	assert.Equal(t, e, in.Event(9))
}
