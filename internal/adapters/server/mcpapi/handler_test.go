package mcpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"sort"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hylla/strand/internal/app"
	"github.com/hylla/strand/internal/domain"
)

// stubService provides deterministic timeline responses for MCP tool tests.
type stubService struct {
	events     map[string]domain.Event
	lastUpdate app.UpdateEventInput
	lastRename string
	deleted    []string
}

func newStubService(events ...domain.Event) *stubService {
	byID := map[string]domain.Event{}
	for _, event := range events {
		byID[event.ID] = event
	}
	return &stubService{events: byID}
}

func (s *stubService) ListEvents(context.Context) ([]domain.Event, error) {
	out := make([]domain.Event, 0, len(s.events))
	for _, event := range s.events {
		out = append(out, event)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *stubService) GetEvent(_ context.Context, id string) (domain.Event, error) {
	event, ok := s.events[id]
	if !ok {
		return domain.Event{}, app.ErrNotFound
	}
	return event, nil
}

func (s *stubService) CreateEvent(_ context.Context, in app.CreateEventInput) (domain.Event, error) {
	event, err := domain.NewEvent(domain.EventInput{
		ID:    "ev-new",
		Name:  in.Name,
		Start: in.Start,
		End:   in.End,
		Notes: in.Notes,
	}, time.Now().UTC())
	if err != nil {
		return domain.Event{}, err
	}
	s.events[event.ID] = event
	return event, nil
}

func (s *stubService) UpdateEvent(_ context.Context, in app.UpdateEventInput) (domain.Event, error) {
	s.lastUpdate = in
	event, ok := s.events[in.ID]
	if !ok {
		return domain.Event{}, app.ErrNotFound
	}
	start, end := event.Start, event.End
	if in.Start != nil {
		start = *in.Start
	}
	if in.End != nil {
		end = *in.End
	}
	if err := event.Reschedule(start, end, time.Now().UTC()); err != nil {
		return domain.Event{}, err
	}
	s.events[event.ID] = event
	return event, nil
}

func (s *stubService) RenameEvent(_ context.Context, id, name string) (domain.Event, error) {
	s.lastRename = name
	event, ok := s.events[id]
	if !ok {
		return domain.Event{}, app.ErrNotFound
	}
	if err := event.Rename(name, time.Now().UTC()); err != nil {
		return domain.Event{}, err
	}
	s.events[id] = event
	return event, nil
}

func (s *stubService) DeleteEvent(_ context.Context, id string) error {
	if _, ok := s.events[id]; !ok {
		return app.ErrNotFound
	}
	s.deleted = append(s.deleted, id)
	delete(s.events, id)
	return nil
}

func stubEvent(t *testing.T, id, name, start, end string) domain.Event {
	t.Helper()
	startDay, err := domain.ParseDay(start)
	if err != nil {
		t.Fatalf("ParseDay(%q) error = %v", start, err)
	}
	endDay, err := domain.ParseDay(end)
	if err != nil {
		t.Fatalf("ParseDay(%q) error = %v", end, err)
	}
	event, err := domain.NewEvent(domain.EventInput{
		ID:    id,
		Name:  name,
		Start: startDay,
		End:   endDay,
	}, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	return event
}

type jsonRPCResponse struct {
	ID     float64        `json:"id"`
	Result map[string]any `json:"result"`
}

// callToolRequest constructs one deterministic tools/call JSON-RPC request payload.
func callToolRequest(id int, toolName string, arguments map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": arguments,
		},
	}
}

// toolResultStructured decodes structuredContent as one map for stable assertions.
func toolResultStructured(t *testing.T, result map[string]any) map[string]any {
	t.Helper()
	structured, ok := result["structuredContent"].(map[string]any)
	if !ok {
		t.Fatalf("structuredContent missing in tool result: %#v", result)
	}
	return structured
}

// postJSONRPC posts one JSON-RPC payload and decodes the response envelope.
func postJSONRPC(t *testing.T, client *http.Client, url string, payload any) (*http.Response, jsonRPCResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	var decoded jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := resp.Body.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return resp, decoded
}

// initializeRequest builds a deterministic MCP initialize request payload.
func initializeRequest() map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"clientInfo": map[string]any{
				"name":    "strand-test",
				"version": "1.0.0",
			},
		},
	}
}

// TestHandlerUsesStatelessTransport verifies no session header is issued.
func TestHandlerUsesStatelessTransport(t *testing.T) {
	handler, err := NewHandler(Config{}, newStubService())
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()

	resp, decoded := postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if decoded.ID != 1 {
		t.Fatalf("id = %v, want 1", decoded.ID)
	}
	if got := resp.Header.Get("Mcp-Session-Id"); got != "" {
		t.Fatalf("Mcp-Session-Id header = %q, want empty (stateless transport)", got)
	}
}

// TestHandlerRegistersTimelineTools verifies MCP tool discovery.
func TestHandlerRegistersTimelineTools(t *testing.T) {
	handler, err := NewHandler(Config{}, newStubService())
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	_, toolsResp := postJSONRPC(t, server.Client(), server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/list",
	})

	toolsRaw, ok := toolsResp.Result["tools"].([]any)
	if !ok {
		t.Fatalf("tools list payload missing tools: %#v", toolsResp.Result)
	}
	toolNames := make([]string, 0, len(toolsRaw))
	for _, toolRaw := range toolsRaw {
		toolMap, ok := toolRaw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := toolMap["name"].(string)
		toolNames = append(toolNames, name)
	}
	for _, want := range []string{
		"strand.list_events",
		"strand.get_event",
		"strand.create_event",
		"strand.move_event",
		"strand.resize_event",
		"strand.rename_event",
		"strand.delete_event",
	} {
		if !slices.Contains(toolNames, want) {
			t.Fatalf("tool list missing %s: %#v", want, toolNames)
		}
	}
}

// TestHandlerListEventsToolCall verifies lane assignments in the list result.
func TestHandlerListEventsToolCall(t *testing.T) {
	svc := newStubService(
		stubEvent(t, "ev-a", "Alpha", "2026-01-10", "2026-01-14"),
		stubEvent(t, "ev-b", "Beta", "2026-01-12", "2026-01-16"),
		stubEvent(t, "ev-c", "Gamma", "2026-01-20", "2026-01-22"),
	)
	handler, err := NewHandler(Config{}, svc)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())

	_, callResp := postJSONRPC(t, server.Client(), server.URL,
		callToolRequest(3, "strand.list_events", map[string]any{}))
	structured := toolResultStructured(t, callResp.Result)

	if got, _ := structured["lanes"].(float64); got != 2 {
		t.Fatalf("lanes = %v, want 2", got)
	}
	rows, ok := structured["events"].([]any)
	if !ok || len(rows) != 3 {
		t.Fatalf("events payload = %#v", structured["events"])
	}
	laneByID := map[string]float64{}
	for _, row := range rows {
		m, _ := row.(map[string]any)
		id, _ := m["id"].(string)
		lane, _ := m["lane"].(float64)
		laneByID[id] = lane
	}
	if laneByID["ev-a"] != 0 || laneByID["ev-c"] != 0 || laneByID["ev-b"] != 1 {
		t.Fatalf("unexpected lane assignment %#v", laneByID)
	}
}

// TestHandlerMoveEventToolCall verifies duration-preserving moves.
func TestHandlerMoveEventToolCall(t *testing.T) {
	svc := newStubService(stubEvent(t, "ev-a", "Alpha", "2026-01-10", "2026-01-14"))
	handler, err := NewHandler(Config{}, svc)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())

	_, callResp := postJSONRPC(t, server.Client(), server.URL,
		callToolRequest(3, "strand.move_event", map[string]any{
			"id":         "ev-a",
			"delta_days": -3,
		}))
	structured := toolResultStructured(t, callResp.Result)

	if got, _ := structured["start"].(string); got != "2026-01-07" {
		t.Fatalf("start = %q, want 2026-01-07", got)
	}
	if got, _ := structured["end"].(string); got != "2026-01-11" {
		t.Fatalf("end = %q, want 2026-01-11", got)
	}
	if got, _ := structured["duration_days"].(float64); got != 5 {
		t.Fatalf("duration_days = %v, want 5", got)
	}
	if _, present := structured["lane"]; present {
		t.Fatalf("single-event result must not carry a lane, got %#v", structured)
	}
}

// TestHandlerResizeEventToolCall verifies edge clamping.
func TestHandlerResizeEventToolCall(t *testing.T) {
	svc := newStubService(stubEvent(t, "ev-a", "Alpha", "2026-01-10", "2026-01-14"))
	handler, err := NewHandler(Config{}, svc)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())

	_, callResp := postJSONRPC(t, server.Client(), server.URL,
		callToolRequest(3, "strand.resize_event", map[string]any{
			"id":         "ev-a",
			"edge":       "start",
			"delta_days": 100,
		}))
	structured := toolResultStructured(t, callResp.Result)

	if got, _ := structured["start"].(string); got != "2026-01-14" {
		t.Fatalf("start = %q, want clamped 2026-01-14", got)
	}
	if got, _ := structured["end"].(string); got != "2026-01-14" {
		t.Fatalf("end = %q, want 2026-01-14", got)
	}
}

// TestNewHandlerRequiresService verifies the service dependency.
func TestNewHandlerRequiresService(t *testing.T) {
	handler, err := NewHandler(Config{}, nil)
	if err == nil {
		t.Fatal("expected error without service")
	}
	if handler != nil {
		t.Fatal("expected nil handler on error")
	}
}

// TestNormalizeConfig verifies endpoint and identity defaults.
func TestNormalizeConfig(t *testing.T) {
	cfg := normalizeConfig(Config{})
	if cfg.ServerName != "strand" || cfg.ServerVersion != "dev" || cfg.EndpointPath != "/mcp" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}

	cfg = normalizeConfig(Config{EndpointPath: "tools/"})
	if cfg.EndpointPath != "/tools" {
		t.Fatalf("endpoint = %q, want /tools", cfg.EndpointPath)
	}
}

// TestHandlerServeHTTPUnavailable verifies nil-handler hardening.
func TestHandlerServeHTTPUnavailable(t *testing.T) {
	var handler *Handler
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

// TestToolResultFromErrorMapping verifies error classification in tool results.
func TestToolResultFromErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "not found", err: app.ErrNotFound, want: "event not found"},
		{name: "range", err: domain.ErrInvalidDateRange, want: "invalid date range"},
		{name: "day", err: domain.ErrInvalidDay, want: "invalid day"},
		{name: "other", err: errors.New("boom"), want: "boom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := toolResultFromError(tc.err)
			if result == nil || len(result.Content) == 0 {
				t.Fatal("expected error content")
			}
			text, ok := result.Content[0].(mcp.TextContent)
			if !ok {
				t.Fatalf("content[0] has unexpected type %T", result.Content[0])
			}
			if !bytes.Contains([]byte(text.Text), []byte(tc.want)) {
				t.Fatalf("text = %q, want containing %q", text.Text, tc.want)
			}
		})
	}
}
