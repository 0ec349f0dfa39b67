package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hylla/strand/internal/domain"
)

// IDGenerator returns unique identifiers for new events.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service coordinates event mutations against the repository. It is the
// commit sink for the timeline: drags and renames land here as partial
// updates once the user releases them.
type Service struct {
	repo  Repository
	idGen IDGenerator
	clock Clock
}

// NewService constructs the application service.
func NewService(repo Repository, idGen IDGenerator, clock Clock) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{repo: repo, idGen: idGen, clock: clock}
}

// CreateEventInput carries the fields for a new event.
type CreateEventInput struct {
	Name  string
	Start time.Time
	End   time.Time
	Notes string
}

// UpdateEventInput is a partial update: nil fields keep current values.
type UpdateEventInput struct {
	ID    string
	Name  *string
	Start *time.Time
	End   *time.Time
	Notes *string
}

// ListEvents returns all events ordered by start date, then id.
func (s *Service) ListEvents(ctx context.Context) ([]domain.Event, error) {
	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}

// GetEvent returns one event by id.
func (s *Service) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Event{}, domain.ErrInvalidID
	}
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("get event %s: %w", id, err)
	}
	return event, nil
}

// CreateEvent validates and persists a new event.
func (s *Service) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	event, err := domain.NewEvent(domain.EventInput{
		ID:    s.idGen(),
		Name:  in.Name,
		Start: in.Start,
		End:   in.End,
		Notes: in.Notes,
	}, s.clock())
	if err != nil {
		return domain.Event{}, err
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// UpdateEvent applies a partial update to one event. Date changes are
// validated together so a commit can never persist an inverted range.
func (s *Service) UpdateEvent(ctx context.Context, in UpdateEventInput) (domain.Event, error) {
	event, err := s.GetEvent(ctx, in.ID)
	if err != nil {
		return domain.Event{}, err
	}
	now := s.clock()

	if in.Start != nil || in.End != nil {
		start := event.Start
		end := event.End
		if in.Start != nil {
			start = *in.Start
		}
		if in.End != nil {
			end = *in.End
		}
		if err := event.Reschedule(start, end, now); err != nil {
			return domain.Event{}, err
		}
	}
	if in.Name != nil {
		if err := event.Rename(*in.Name, now); err != nil {
			return domain.Event{}, err
		}
	}
	if in.Notes != nil {
		event.UpdateNotes(*in.Notes, now)
	}

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return domain.Event{}, fmt.Errorf("update event %s: %w", event.ID, err)
	}
	return event, nil
}

// RenameEvent commits a confirmed name edit.
func (s *Service) RenameEvent(ctx context.Context, id, name string) (domain.Event, error) {
	return s.UpdateEvent(ctx, UpdateEventInput{ID: id, Name: &name})
}

// DeleteEvent removes one event.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrInvalidID
	}
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	return nil
}
