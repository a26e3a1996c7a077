// Package events holds the ordered collection of timeline events and is the
// only path through which it is mutated.
package events

import (
	"context"

	"github.com/dmitrijs2005/timeboard/internal/server/models"
)

// Repository is an ordered event collection.
//
// Update and Delete on an unknown id are no-ops: they report false and never
// return an error.
type Repository interface {
	Create(ctx context.Context, input models.EventInput) models.Event
	Update(ctx context.Context, id int64, input models.EventInput) bool
	Delete(ctx context.Context, id int64) bool
	Get(ctx context.Context, id int64) (models.Event, error)
	List(ctx context.Context) []models.Event
	Len() int
}
