package app

import (
	"context"

	"github.com/hylla/strand/internal/domain"
)

// Repository is the persistence port for timeline events.
type Repository interface {
	CreateEvent(context.Context, domain.Event) error
	UpdateEvent(context.Context, domain.Event) error
	GetEvent(context.Context, string) (domain.Event, error)
	ListEvents(context.Context) ([]domain.Event, error)
	DeleteEvent(context.Context, string) error
	DeleteAllEvents(context.Context) error
}
