package app

import (
	"context"
	"fmt"

	"github.com/hylla/strand/internal/domain"
)

// snapshotVersion tags exported snapshots so future readers can migrate.
const snapshotVersion = 1

// EventRecord is the wire form of one event: dates as ISO-8601 calendar
// days, no time-of-day or timezone component.
type EventRecord struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Snapshot is a portable dump of the full event set.
type Snapshot struct {
	Version int           `json:"version" yaml:"version"`
	Events  []EventRecord `json:"events" yaml:"events"`
}

// ExportSnapshot collects every event into a portable snapshot.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	events, err := s.ListEvents(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	records := make([]EventRecord, 0, len(events))
	for _, event := range events {
		records = append(records, EventRecord{
			ID:    event.ID,
			Name:  event.Name,
			Start: domain.FormatDay(event.Start),
			End:   domain.FormatDay(event.End),
			Notes: event.Notes,
		})
	}
	return Snapshot{Version: snapshotVersion, Events: records}, nil
}

// ImportEvents validates and persists a batch of event records. With
// replace set, the existing event set is dropped first. Records without
// an id are assigned fresh ones.
func (s *Service) ImportEvents(ctx context.Context, records []EventRecord, replace bool) (int, error) {
	events := make([]domain.Event, 0, len(records))
	now := s.clock()
	for i, record := range records {
		start, err := domain.ParseDay(record.Start)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		end, err := domain.ParseDay(record.End)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		id := record.ID
		if id == "" {
			id = s.idGen()
		}
		event, err := domain.NewEvent(domain.EventInput{
			ID:    id,
			Name:  record.Name,
			Start: start,
			End:   end,
			Notes: record.Notes,
		}, now)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		events = append(events, event)
	}

	if replace {
		if err := s.repo.DeleteAllEvents(ctx); err != nil {
			return 0, fmt.Errorf("clear events: %w", err)
		}
	}
	for _, event := range events {
		if err := s.repo.CreateEvent(ctx, event); err != nil {
			return 0, fmt.Errorf("import event %s: %w", event.ID, err)
		}
	}
	return len(events), nil
}
