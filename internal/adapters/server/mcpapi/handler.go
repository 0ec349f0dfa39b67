// Package mcpapi provides a stateless MCP streamable-HTTP adapter over
// the timeline service.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hylla/strand/internal/app"
	"github.com/hylla/strand/internal/domain"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Service is the application surface exposed as MCP tools.
type Service interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, id string) (domain.Event, error)
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	UpdateEvent(ctx context.Context, in app.UpdateEventInput) (domain.Event, error)
	RenameEvent(ctx context.Context, id, name string) (domain.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// eventResult is the JSON shape tool results use for one event. Lane
// is only set by list_events, where the full packing is computed;
// single-event tools omit it rather than claim a stale assignment.
type eventResult struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Start        string `json:"start"`
	End          string `json:"end"`
	DurationDays int    `json:"duration_days"`
	Lane         *int   `json:"lane,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// NewHandler builds one stateless MCP adapter with the timeline tools.
func NewHandler(cfg Config, svc Service) (*Handler, error) {
	if svc == nil {
		return nil, fmt.Errorf("timeline service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerListTool(mcpSrv, svc)
	registerGetTool(mcpSrv, svc)
	registerCreateTool(mcpSrv, svc)
	registerMoveTool(mcpSrv, svc)
	registerResizeTool(mcpSrv, svc)
	registerRenameTool(mcpSrv, svc)
	registerDeleteTool(mcpSrv, svc)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "strand"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerListTool registers `strand.list_events` with lane assignments.
func registerListTool(srv *mcpserver.MCPServer, svc Service) {
	srv.AddTool(
		mcp.NewTool(
			"strand.list_events",
			mcp.WithDescription("List all timeline events with their packed lane assignments."),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			events, err := svc.ListEvents(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			lanes := domain.AssignLanes(events)
			laneByID := map[string]int{}
			for laneIdx, lane := range lanes {
				for _, event := range lane {
					laneByID[event.ID] = laneIdx
				}
			}
			rows := make([]eventResult, 0, len(events))
			for _, event := range events {
				rows = append(rows, toLaneEventResult(event, laneByID[event.ID]))
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"events": rows,
				"lanes":  len(lanes),
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_events result: %w", err)
			}
			return result, nil
		},
	)
}

// registerGetTool registers `strand.get_event`.
func registerGetTool(srv *mcpserver.MCPServer, svc Service) {
	srv.AddTool(
		mcp.NewTool(
			"strand.get_event",
			mcp.WithDescription("Fetch one timeline event by id."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Event identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			event, err := svc.GetEvent(ctx, id)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(toEventResult(event))
			if err != nil {
				return nil, fmt.Errorf("encode get_event result: %w", err)
			}
			return result, nil
		},
	)
}

// registerCreateTool registers `strand.create_event`.
func registerCreateTool(srv *mcpserver.MCPServer, svc Service) {
	srv.AddTool(
		mcp.NewTool(
			"strand.create_event",
			mcp.WithDescription("Create a new timeline event."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Event name")),
			mcp.WithString("start", mcp.Required(), mcp.Description("Start day, YYYY-MM-DD")),
			mcp.WithString("end", mcp.Required(), mcp.Description("End day, YYYY-MM-DD, inclusive")),
			mcp.WithString("notes", mcp.Description("Optional markdown notes")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := req.RequireString("name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			startRaw, err := req.RequireString("start")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			endRaw, err := req.RequireString("end")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			start, err := domain.ParseDay(startRaw)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			end, err := domain.ParseDay(endRaw)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			event, err := svc.CreateEvent(ctx, app.CreateEventInput{
				Name:  name,
				Start: start,
				End:   end,
				Notes: req.GetString("notes", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(toEventResult(event))
			if err != nil {
				return nil, fmt.Errorf("encode create_event result: %w", err)
			}
			return result, nil
		},
	)
}

// registerMoveTool registers `strand.move_event`: shift both dates by a
// whole-day delta, preserving duration.
func registerMoveTool(srv *mcpserver.MCPServer, svc Service) {
	srv.AddTool(
		mcp.NewTool(
			"strand.move_event",
			mcp.WithDescription("Shift an event by a whole number of days, preserving its duration."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Event identifier")),
			mcp.WithNumber("delta_days", mcp.Required(), mcp.Description("Days to shift, negative moves earlier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			deltaDays, err := req.RequireInt("delta_days")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			event, err := svc.GetEvent(ctx, id)
			if err != nil {
				return toolResultFromError(err), nil
			}
			start := domain.AddDays(event.Start, deltaDays)
			end := domain.AddDays(event.End, deltaDays)
			updated, err := svc.UpdateEvent(ctx, app.UpdateEventInput{ID: id, Start: &start, End: &end})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(toEventResult(updated))
			if err != nil {
				return nil, fmt.Errorf("encode move_event result: %w", err)
			}
			return result, nil
		},
	)
}

// registerResizeTool registers `strand.resize_event`: move one edge by
// a day delta. The edge clamps at the opposite date rather than
// inverting.
func registerResizeTool(srv *mcpserver.MCPServer, svc Service) {
	srv.AddTool(
		mcp.NewTool(
			"strand.resize_event",
			mcp.WithDescription("Move one edge of an event by a whole number of days. The edge stops at the opposite date."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Event identifier")),
			mcp.WithString("edge", mcp.Required(), mcp.Description("Which edge to move"), mcp.Enum("start", "end")),
			mcp.WithNumber("delta_days", mcp.Required(), mcp.Description("Days to shift, negative moves earlier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			edge, err := req.RequireString("edge")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			deltaDays, err := req.RequireInt("delta_days")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			event, err := svc.GetEvent(ctx, id)
			if err != nil {
				return toolResultFromError(err), nil
			}

			input := app.UpdateEventInput{ID: id}
			switch edge {
			case "start":
				start := domain.AddDays(event.Start, deltaDays)
				if start.After(event.End) {
					start = event.End
				}
				input.Start = &start
			case "end":
				end := domain.AddDays(event.End, deltaDays)
				if end.Before(event.Start) {
					end = event.Start
				}
				input.End = &end
			default:
				return mcp.NewToolResultError(fmt.Sprintf("invalid edge %q", edge)), nil
			}

			updated, err := svc.UpdateEvent(ctx, input)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(toEventResult(updated))
			if err != nil {
				return nil, fmt.Errorf("encode resize_event result: %w", err)
			}
			return result, nil
		},
	)
}

// registerRenameTool registers `strand.rename_event`.
func registerRenameTool(srv *mcpserver.MCPServer, svc Service) {
	srv.AddTool(
		mcp.NewTool(
			"strand.rename_event",
			mcp.WithDescription("Rename a timeline event without touching its dates."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Event identifier")),
			mcp.WithString("name", mcp.Required(), mcp.Description("New event name")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			name, err := req.RequireString("name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			event, err := svc.RenameEvent(ctx, id, name)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(toEventResult(event))
			if err != nil {
				return nil, fmt.Errorf("encode rename_event result: %w", err)
			}
			return result, nil
		},
	)
}

// registerDeleteTool registers `strand.delete_event`.
func registerDeleteTool(srv *mcpserver.MCPServer, svc Service) {
	srv.AddTool(
		mcp.NewTool(
			"strand.delete_event",
			mcp.WithDescription("Delete a timeline event."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Event identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := svc.DeleteEvent(ctx, id); err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"deleted": id})
			if err != nil {
				return nil, fmt.Errorf("encode delete_event result: %w", err)
			}
			return result, nil
		},
	)
}

// toEventResult maps one domain event onto the tool result shape.
func toEventResult(event domain.Event) eventResult {
	return eventResult{
		ID:           event.ID,
		Name:         event.Name,
		Start:        domain.FormatDay(event.Start),
		End:          domain.FormatDay(event.End),
		DurationDays: event.DurationDays(),
		Notes:        event.Notes,
	}
}

// toLaneEventResult attaches a computed lane index to the result shape.
func toLaneEventResult(event domain.Event, lane int) eventResult {
	result := toEventResult(event)
	result.Lane = &lane
	return result
}

// toolResultFromError maps service errors onto MCP tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, app.ErrNotFound):
		return mcp.NewToolResultError("event not found: " + err.Error())
	case errors.Is(err, domain.ErrInvalidDateRange):
		return mcp.NewToolResultError("invalid date range: " + err.Error())
	case errors.Is(err, domain.ErrInvalidDay):
		return mcp.NewToolResultError("invalid day: " + err.Error())
	default:
		return mcp.NewToolResultError(err.Error())
	}
}
