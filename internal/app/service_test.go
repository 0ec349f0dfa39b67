package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hylla/strand/internal/domain"
)

type fakeRepo struct {
	events map[string]domain.Event
	order  []string
	err    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{events: map[string]domain.Event{}}
}

func (f *fakeRepo) CreateEvent(_ context.Context, event domain.Event) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.events[event.ID]; ok {
		return fmt.Errorf("duplicate id %s", event.ID)
	}
	f.events[event.ID] = event
	f.order = append(f.order, event.ID)
	return nil
}

func (f *fakeRepo) UpdateEvent(_ context.Context, event domain.Event) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.events[event.ID]; !ok {
		return ErrNotFound
	}
	f.events[event.ID] = event
	return nil
}

func (f *fakeRepo) GetEvent(_ context.Context, id string) (domain.Event, error) {
	if f.err != nil {
		return domain.Event{}, f.err
	}
	event, ok := f.events[id]
	if !ok {
		return domain.Event{}, ErrNotFound
	}
	return event, nil
}

func (f *fakeRepo) ListEvents(context.Context) ([]domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Event, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.events[id])
	}
	return out, nil
}

func (f *fakeRepo) DeleteEvent(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.events[id]; !ok {
		return ErrNotFound
	}
	delete(f.events, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeRepo) DeleteAllEvents(context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.events = map[string]domain.Event{}
	f.order = nil
	return nil
}

func testClock() Clock {
	return func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
}

func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("ev-%d", n)
	}
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := domain.ParseDay(value)
	if err != nil {
		t.Fatalf("ParseDay(%q) error = %v", value, err)
	}
	return d
}

func TestServiceCreateAndListOrdering(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo(), sequentialIDs(), testClock())

	if _, err := svc.CreateEvent(ctx, CreateEventInput{Name: "Later", Start: day(t, "2024-02-01"), End: day(t, "2024-02-03")}); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if _, err := svc.CreateEvent(ctx, CreateEventInput{Name: "Earlier", Start: day(t, "2024-01-05"), End: day(t, "2024-01-06")}); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	events, err := svc.ListEvents(ctx)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("ListEvents() len = %d, want 2", len(events))
	}
	if events[0].Name != "Earlier" || events[1].Name != "Later" {
		t.Fatalf("ListEvents() order = %s, %s", events[0].Name, events[1].Name)
	}
}

func TestServiceCreateEventRejectsInvertedRange(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo(), sequentialIDs(), testClock())

	_, err := svc.CreateEvent(ctx, CreateEventInput{Name: "Bad", Start: day(t, "2024-01-10"), End: day(t, "2024-01-05")})
	if !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("CreateEvent() error = %v, want ErrInvalidDateRange", err)
	}
}

func TestServiceUpdateEventPartialFields(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo(), sequentialIDs(), testClock())

	created, err := svc.CreateEvent(ctx, CreateEventInput{Name: "Launch", Start: day(t, "2024-01-05"), End: day(t, "2024-01-07")})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	// Move commit: both dates shift, duration preserved.
	newStart := day(t, "2024-01-08")
	newEnd := day(t, "2024-01-10")
	updated, err := svc.UpdateEvent(ctx, UpdateEventInput{ID: created.ID, Start: &newStart, End: &newEnd})
	if err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}
	if domain.FormatDay(updated.Start) != "2024-01-08" || domain.FormatDay(updated.End) != "2024-01-10" {
		t.Fatalf("UpdateEvent() dates = %s..%s", domain.FormatDay(updated.Start), domain.FormatDay(updated.End))
	}
	if updated.Name != "Launch" {
		t.Fatalf("UpdateEvent() name changed to %q", updated.Name)
	}

	// Name-only commit leaves dates alone.
	name := "Ship"
	updated, err = svc.UpdateEvent(ctx, UpdateEventInput{ID: created.ID, Name: &name})
	if err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}
	if updated.Name != "Ship" || domain.FormatDay(updated.Start) != "2024-01-08" {
		t.Fatalf("UpdateEvent() partial = %q %s", updated.Name, domain.FormatDay(updated.Start))
	}
}

func TestServiceUpdateEventRejectsInvertedDates(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo(), sequentialIDs(), testClock())

	created, err := svc.CreateEvent(ctx, CreateEventInput{Name: "Launch", Start: day(t, "2024-01-05"), End: day(t, "2024-01-07")})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	badStart := day(t, "2024-01-09")
	if _, err := svc.UpdateEvent(ctx, UpdateEventInput{ID: created.ID, Start: &badStart}); !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("UpdateEvent() error = %v, want ErrInvalidDateRange", err)
	}

	// The stored event is untouched after the rejected update.
	stored, err := svc.GetEvent(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if domain.FormatDay(stored.Start) != "2024-01-05" {
		t.Fatalf("GetEvent() start = %s, want 2024-01-05", domain.FormatDay(stored.Start))
	}
}

func TestServiceUpdateEventUnknownID(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo(), sequentialIDs(), testClock())

	name := "x"
	if _, err := svc.UpdateEvent(ctx, UpdateEventInput{ID: "missing", Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateEvent() error = %v, want ErrNotFound", err)
	}
}

func TestServiceRenameEvent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo(), sequentialIDs(), testClock())

	created, err := svc.CreateEvent(ctx, CreateEventInput{Name: "Launch", Start: day(t, "2024-01-05"), End: day(t, "2024-01-07")})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	renamed, err := svc.RenameEvent(ctx, created.ID, "Release")
	if err != nil {
		t.Fatalf("RenameEvent() error = %v", err)
	}
	if renamed.Name != "Release" {
		t.Fatalf("RenameEvent() name = %q", renamed.Name)
	}
}

func TestServiceDeleteEvent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo(), sequentialIDs(), testClock())

	created, err := svc.CreateEvent(ctx, CreateEventInput{Name: "Launch", Start: day(t, "2024-01-05"), End: day(t, "2024-01-07")})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if err := svc.DeleteEvent(ctx, created.ID); err != nil {
		t.Fatalf("DeleteEvent() error = %v", err)
	}
	if _, err := svc.GetEvent(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetEvent() after delete error = %v, want ErrNotFound", err)
	}
}

func TestServiceExportSnapshot(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo(), sequentialIDs(), testClock())

	if _, err := svc.CreateEvent(ctx, CreateEventInput{Name: "Launch", Start: day(t, "2024-01-05"), End: day(t, "2024-01-07"), Notes: "prep"}); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	snapshot, err := svc.ExportSnapshot(ctx)
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}
	if snapshot.Version != 1 || len(snapshot.Events) != 1 {
		t.Fatalf("ExportSnapshot() = %+v", snapshot)
	}
	record := snapshot.Events[0]
	if record.Start != "2024-01-05" || record.End != "2024-01-07" || record.Notes != "prep" {
		t.Fatalf("ExportSnapshot() record = %+v", record)
	}
}

func TestServiceImportEvents(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo(), sequentialIDs(), testClock())

	if _, err := svc.CreateEvent(ctx, CreateEventInput{Name: "Old", Start: day(t, "2024-01-01"), End: day(t, "2024-01-02")}); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	records := []EventRecord{
		{Name: "Imported A", Start: "2024-02-01", End: "2024-02-03"},
		{ID: "keep-id", Name: "Imported B", Start: "2024-02-05", End: "2024-02-05"},
	}
	count, err := svc.ImportEvents(ctx, records, true)
	if err != nil {
		t.Fatalf("ImportEvents() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("ImportEvents() count = %d, want 2", count)
	}

	events, err := svc.ListEvents(ctx)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("ListEvents() len = %d, want 2 after replace", len(events))
	}
	if events[1].ID != "keep-id" {
		t.Fatalf("ImportEvents() preserved id = %s, want keep-id", events[1].ID)
	}
}

func TestServiceImportEventsRejectsBadRecord(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, sequentialIDs(), testClock())

	records := []EventRecord{
		{Name: "Good", Start: "2024-02-01", End: "2024-02-03"},
		{Name: "Bad", Start: "2024-02-10", End: "2024-02-05"},
	}
	if _, err := svc.ImportEvents(ctx, records, true); !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("ImportEvents() error = %v, want ErrInvalidDateRange", err)
	}
	// Validation happens before any write, so nothing was imported.
	events, err := svc.ListEvents(ctx)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("ListEvents() len = %d, want 0", len(events))
	}
}
