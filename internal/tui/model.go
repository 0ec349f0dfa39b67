// Package tui renders an interactive horizontal timeline: events packed
// into lanes, draggable with the mouse, with zoom and pan over a padded
// date range.
package tui

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/strand/internal/app"
	"github.com/hylla/strand/internal/domain"
)

// Service is the application surface the timeline needs. UpdateEvent is
// the commit sink: drags and renames land there once confirmed.
type Service interface {
	ListEvents(context.Context) ([]domain.Event, error)
	CreateEvent(context.Context, app.CreateEventInput) (domain.Event, error)
	UpdateEvent(context.Context, app.UpdateEventInput) (domain.Event, error)
	RenameEvent(context.Context, string, string) (domain.Event, error)
	DeleteEvent(context.Context, string) error
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define the modal states.
const (
	modeNone inputMode = iota
	modeRenameEvent
	modeZoomInput
	modeAddEvent
	modeEventInfo
	modeConfirmDelete
)

// event-form field indexes used throughout keyboard/update logic.
const (
	formFieldName = iota
	formFieldStart
	formFieldEnd
	formFieldNotes
	formFieldCount
)

// boardTopRows counts the fixed rows above the lane area: header, axis
// labels, axis ticks.
const boardTopRows = 3

// doubleClickWindow bounds the gap between two clicks that open rename.
const doubleClickWindow = 400 * time.Millisecond

// Model drives the timeline program.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	err    error

	status string

	help help.Model
	keys keyMap

	timeline       TimelineConfig
	clock          func() time.Time
	writeClipboard func(string) error

	events    []domain.Event
	lanes     []domain.Lane
	timeRange domain.TimeRange
	hasRange  bool

	viewport Viewport
	drag     *DragSession

	selectedEventID string

	mode        inputMode
	renameInput textinput.Model
	zoomInput   textinput.Model
	formInputs  []textinput.Model
	formFocus   int

	renameEventID  string
	originalName   string
	infoEventID    string
	confirmEventID string

	lastClickEventID string
	lastClickAt      time.Time

	pendingFocusEventID string

	notes notesRenderer
}

// loadedMsg carries the refreshed event set.
type loadedMsg struct {
	events []domain.Event
	err    error
}

// actionMsg carries the outcome of one service mutation.
type actionMsg struct {
	err          error
	status       string
	reload       bool
	focusEventID string
}

// NewModel constructs the timeline model.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false

	renameInput := textinput.New()
	renameInput.Prompt = ""
	renameInput.Placeholder = "event name"
	renameInput.CharLimit = 120

	zoomInput := textinput.New()
	zoomInput.Prompt = ""
	zoomInput.Placeholder = "zoom percent"
	zoomInput.CharLimit = 5

	cfg := DefaultTimelineConfig()
	m := Model{
		svc:            svc,
		status:         "loading...",
		help:           h,
		keys:           newKeyMap(),
		timeline:       cfg,
		clock:          time.Now,
		writeClipboard: clipboard.WriteAll,
		renameInput:    renameInput,
		zoomInput:      zoomInput,
		viewport: NewViewport(cfg.BaseDayWidth, ZoomBounds{
			Min:    cfg.ZoomMin,
			Max:    cfg.ZoomMax,
			Factor: cfg.ZoomFactor,
		}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// loadData loads the event set from the service.
func (m Model) loadData() tea.Msg {
	events, err := m.svc.ListEvents(context.Background())
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{events: events}
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		if m.hasRange {
			m.viewport.ClampScroll(m.timeRange.TotalDays())
		}
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.events = msg.events
		m.recomputeLayout()
		if m.pendingFocusEventID != "" {
			if _, ok := m.eventByID(m.pendingFocusEventID); ok {
				m.selectedEventID = m.pendingFocusEventID
			}
			m.pendingFocusEventID = ""
		}
		if m.selectedEventID == "" && len(m.events) > 0 {
			m.selectedEventID = m.events[0].ID
		}
		if _, ok := m.eventByID(m.selectedEventID); !ok {
			m.selectedEventID = ""
			if len(m.events) > 0 {
				m.selectedEventID = m.events[0].ID
			}
		}
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.err = nil
			m.status = msg.err.Error()
			return m, nil
		}
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.focusEventID != "" {
			m.pendingFocusEventID = msg.focusEventID
		}
		if msg.reload {
			return m, m.loadData
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	default:
		return m, nil
	}
}

// recomputeLayout rebuilds lanes and the padded range after the event
// set changes. Lanes derive from committed dates only; an active drag
// session overrides the display, not the layout.
func (m *Model) recomputeLayout() {
	m.lanes = domain.AssignLanes(m.events)
	m.timeRange, m.hasRange = domain.ComputeTimeRange(m.events, m.timeline.BufferDays)
	if m.hasRange {
		m.viewport.ClampScroll(m.timeRange.TotalDays())
	}
}

// eventByID finds one committed event.
func (m Model) eventByID(id string) (domain.Event, bool) {
	for _, event := range m.events {
		if event.ID == id {
			return event, true
		}
	}
	return domain.Event{}, false
}

// displayEvent substitutes the drag session's tentative dates for the
// dragged event so the board updates optimistically.
func (m Model) displayEvent(event domain.Event) domain.Event {
	if m.drag != nil && m.drag.EventID == event.ID {
		event.Start = m.drag.Start
		event.End = m.drag.End
	}
	return event
}

// selectedEvent returns the keyboard/mouse selection.
func (m Model) selectedEvent() (domain.Event, bool) {
	return m.eventByID(m.selectedEventID)
}

// --- key handling ---

// handleNormalModeKey handles keys outside modal input.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		if m.drag != nil {
			// Cancel policy: an aborted drag restores the original dates
			// and emits nothing.
			m.drag.Cancel()
			m.drag = nil
			m.status = "drag canceled"
			return m, nil
		}
		m.status = ""
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData

	case key.Matches(msg, m.keys.nextEvent):
		m.moveSelection(1)
		return m, nil

	case key.Matches(msg, m.keys.prevEvent):
		m.moveSelection(-1)
		return m, nil

	case key.Matches(msg, m.keys.laneDown):
		m.moveSelectionLane(1)
		return m, nil

	case key.Matches(msg, m.keys.laneUp):
		m.moveSelectionLane(-1)
		return m, nil

	case key.Matches(msg, m.keys.panLeft):
		m.viewport.ScrollBy(-4 * m.viewport.DayWidth())
		if m.hasRange {
			m.viewport.ClampScroll(m.timeRange.TotalDays())
		}
		return m, nil

	case key.Matches(msg, m.keys.panRight):
		m.viewport.ScrollBy(4 * m.viewport.DayWidth())
		if m.hasRange {
			m.viewport.ClampScroll(m.timeRange.TotalDays())
		}
		return m, nil

	case key.Matches(msg, m.keys.zoomIn):
		m.viewport.ZoomIn()
		if m.hasRange {
			m.viewport.ClampScroll(m.timeRange.TotalDays())
		}
		return m, nil

	case key.Matches(msg, m.keys.zoomOut):
		m.viewport.ZoomOut()
		if m.hasRange {
			m.viewport.ClampScroll(m.timeRange.TotalDays())
		}
		return m, nil

	case key.Matches(msg, m.keys.zoomReset):
		m.viewport.ResetZoom()
		if m.hasRange {
			m.viewport.ClampScroll(m.timeRange.TotalDays())
		}
		return m, nil

	case key.Matches(msg, m.keys.zoomInput):
		m.mode = modeZoomInput
		m.zoomInput.SetValue(fmt.Sprintf("%d", m.viewport.ZoomPercent()))
		return m, m.zoomInput.Focus()

	case key.Matches(msg, m.keys.jumpToday):
		m.jumpToToday()
		return m, nil

	case key.Matches(msg, m.keys.addEvent):
		return m, m.startEventForm()

	case key.Matches(msg, m.keys.renameNow):
		event, ok := m.selectedEvent()
		if !ok {
			m.status = "no event selected"
			return m, nil
		}
		return m, m.startRename(event)

	case key.Matches(msg, m.keys.eventInfo):
		event, ok := m.selectedEvent()
		if !ok {
			m.status = "no event selected"
			return m, nil
		}
		m.mode = modeEventInfo
		m.infoEventID = event.ID
		return m, nil

	case key.Matches(msg, m.keys.deleteNow):
		event, ok := m.selectedEvent()
		if !ok {
			m.status = "no event selected"
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.confirmEventID = event.ID
		return m, nil

	case key.Matches(msg, m.keys.yank):
		event, ok := m.selectedEvent()
		if !ok {
			m.status = "no event selected"
			return m, nil
		}
		summary := fmt.Sprintf("%s (%s → %s)", event.Name, domain.FormatDay(event.Start), domain.FormatDay(event.End))
		if err := m.writeClipboard(summary); err != nil {
			m.status = "clipboard unavailable"
			return m, nil
		}
		m.status = "copied: " + truncate(summary, 48)
		return m, nil
	}
	return m, nil
}

// handleInputModeKey routes keys while a modal input is open.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeRenameEvent:
		return m.handleRenameKey(msg)
	case modeZoomInput:
		return m.handleZoomInputKey(msg)
	case modeAddEvent:
		return m.handleEventFormKey(msg)
	case modeEventInfo:
		switch msg.String() {
		case "esc", "i", "enter", "q":
			m.mode = modeNone
			m.infoEventID = ""
		}
		return m, nil
	case modeConfirmDelete:
		switch msg.String() {
		case "y", "enter":
			id := m.confirmEventID
			m.mode = modeNone
			m.confirmEventID = ""
			return m, func() tea.Msg {
				if err := m.svc.DeleteEvent(context.Background(), id); err != nil {
					return actionMsg{err: err}
				}
				return actionMsg{status: "event deleted", reload: true}
			}
		case "n", "esc":
			m.mode = modeNone
			m.confirmEventID = ""
			m.status = "delete canceled"
		}
		return m, nil
	}
	return m, nil
}

// startRename opens the name editor. Rename is independent of
// positional dragging; while editing, pointer-downs on the body do not
// start a move.
func (m *Model) startRename(event domain.Event) tea.Cmd {
	m.mode = modeRenameEvent
	m.renameEventID = event.ID
	m.originalName = event.Name
	m.renameInput.SetValue(event.Name)
	return m.renameInput.Focus()
}

// handleRenameKey drives the rename sub-machine: Enter confirms and
// commits only when the name changed, Esc reverts without commit.
func (m Model) handleRenameKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(m.renameInput.Value())
		id := m.renameEventID
		original := m.originalName
		m.mode = modeNone
		m.renameEventID = ""
		m.renameInput.Blur()
		if name == "" {
			m.status = "name required"
			return m, nil
		}
		if name == original {
			return m, nil
		}
		return m, func() tea.Msg {
			updated, err := m.svc.RenameEvent(context.Background(), id, name)
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{status: "event renamed", reload: true, focusEventID: updated.ID}
		}
	case "esc":
		m.mode = modeNone
		m.renameEventID = ""
		m.renameInput.Blur()
		m.status = "rename canceled"
		return m, nil
	}
	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	return m, cmd
}

// handleZoomInputKey drives the absolute zoom entry. Invalid input is
// rejected and the field reverts to the last valid percentage.
func (m Model) handleZoomInputKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if err := m.viewport.SetZoomPercent(m.zoomInput.Value()); err != nil {
			m.status = err.Error()
			m.zoomInput.SetValue(fmt.Sprintf("%d", m.viewport.ZoomPercent()))
			return m, nil
		}
		if m.hasRange {
			m.viewport.ClampScroll(m.timeRange.TotalDays())
		}
		m.mode = modeNone
		m.zoomInput.Blur()
		m.status = fmt.Sprintf("zoom %d%%", m.viewport.ZoomPercent())
		return m, nil
	case "esc":
		m.mode = modeNone
		m.zoomInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.zoomInput, cmd = m.zoomInput.Update(msg)
	return m, cmd
}

// startEventForm opens the new-event form.
func (m *Model) startEventForm() tea.Cmd {
	m.mode = modeAddEvent
	m.formInputs = make([]textinput.Model, formFieldCount)
	placeholders := []string{"name", "start (YYYY-MM-DD)", "end (YYYY-MM-DD)", "notes (markdown, optional)"}
	for i := range m.formInputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[i]
		in.CharLimit = 200
		m.formInputs[i] = in
	}
	today := domain.FormatDay(m.clock())
	m.formInputs[formFieldStart].SetValue(today)
	m.formInputs[formFieldEnd].SetValue(today)
	m.formFocus = formFieldName
	return m.formInputs[formFieldName].Focus()
}

// handleEventFormKey drives the new-event form.
func (m Model) handleEventFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.formInputs = nil
		m.status = "new event canceled"
		return m, nil
	case "tab", "down":
		return m, m.focusFormField((m.formFocus + 1) % formFieldCount)
	case "shift+tab", "up":
		return m, m.focusFormField((m.formFocus + formFieldCount - 1) % formFieldCount)
	case "enter":
		return m.submitEventForm()
	}
	var cmd tea.Cmd
	m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
	return m, cmd
}

// focusFormField moves form focus.
func (m *Model) focusFormField(idx int) tea.Cmd {
	m.formInputs[m.formFocus].Blur()
	m.formFocus = idx
	return m.formInputs[idx].Focus()
}

// submitEventForm validates and creates the event.
func (m Model) submitEventForm() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.formInputs[formFieldName].Value())
	if name == "" {
		m.status = "name required"
		return m, nil
	}
	start, err := domain.ParseDay(m.formInputs[formFieldStart].Value())
	if err != nil {
		m.status = "start: " + err.Error()
		return m, nil
	}
	end, err := domain.ParseDay(m.formInputs[formFieldEnd].Value())
	if err != nil {
		m.status = "end: " + err.Error()
		return m, nil
	}
	if start.After(end) {
		m.status = "start date is after end date"
		return m, nil
	}
	notes := m.formInputs[formFieldNotes].Value()
	m.mode = modeNone
	m.formInputs = nil
	return m, func() tea.Msg {
		created, err := m.svc.CreateEvent(context.Background(), app.CreateEventInput{
			Name:  name,
			Start: start,
			End:   end,
			Notes: notes,
		})
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "event created", reload: true, focusEventID: created.ID}
	}
}

// --- selection ---

// selectionIndex locates the selected event in start order.
func (m Model) selectionIndex() int {
	for i, event := range m.events {
		if event.ID == m.selectedEventID {
			return i
		}
	}
	return -1
}

// moveSelection steps through events in start order.
func (m *Model) moveSelection(delta int) {
	if len(m.events) == 0 {
		return
	}
	idx := m.selectionIndex()
	if idx < 0 {
		idx = 0
	} else {
		idx = clamp(idx+delta, 0, len(m.events)-1)
	}
	m.selectedEventID = m.events[idx].ID
	m.scrollSelectionIntoView()
}

// moveSelectionLane jumps to the nearest-starting event in an adjacent
// lane.
func (m *Model) moveSelectionLane(delta int) {
	laneIdx, posIdx := m.selectionLane()
	if laneIdx < 0 {
		m.moveSelection(0)
		return
	}
	target := clamp(laneIdx+delta, 0, len(m.lanes)-1)
	if target == laneIdx {
		return
	}
	current := m.lanes[laneIdx][posIdx]
	best := 0
	bestGap := -1
	for i, candidate := range m.lanes[target] {
		gap := domain.DaysBetween(current.Start, candidate.Start)
		if gap < 0 {
			gap = -gap
		}
		if bestGap < 0 || gap < bestGap {
			best = i
			bestGap = gap
		}
	}
	m.selectedEventID = m.lanes[target][best].ID
	m.scrollSelectionIntoView()
}

// selectionLane locates the selection inside the lane layout.
func (m Model) selectionLane() (int, int) {
	for laneIdx, lane := range m.lanes {
		for posIdx, event := range lane {
			if event.ID == m.selectedEventID {
				return laneIdx, posIdx
			}
		}
	}
	return -1, -1
}

// scrollSelectionIntoView pans the viewport just enough to show the
// selected bar.
func (m *Model) scrollSelectionIntoView() {
	event, ok := m.selectedEvent()
	if !ok || !m.hasRange {
		return
	}
	startCol, endCol := m.eventTrackCols(event)
	left := float64(startCol) - m.viewport.ScrollOffset
	right := float64(endCol) - m.viewport.ScrollOffset
	if left < 0 {
		m.viewport.ScrollBy(left)
	} else if right >= float64(m.viewport.Width) {
		m.viewport.ScrollBy(right - float64(m.viewport.Width) + 1)
	}
	m.viewport.ClampScroll(m.timeRange.TotalDays())
}

// jumpToToday centers the viewport on the current day.
func (m *Model) jumpToToday() {
	if !m.hasRange {
		return
	}
	today := m.clock()
	if !m.timeRange.Contains(today) {
		m.status = "today is outside the timeline"
		return
	}
	m.viewport.CenterOn(domain.DaysBetween(m.timeRange.Start, domain.NormalizeDay(today)), m.timeRange.TotalDays())
	m.status = "centered on today"
}

// --- mouse handling ---

// handleMouseClick starts an item drag, a rename (double click), or a
// background pan depending on the press target. An item drag and a pan
// are mutually exclusive by construction: the press lands on exactly
// one of bar, handle, or empty track.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseLeft || !m.hasRange {
		return m, nil
	}
	if m.mode != modeNone {
		// Modal input stays exclusive; renaming in particular must not
		// start a positional drag underneath.
		return m, nil
	}

	event, mode, ok := m.hitTest(msg.X, msg.Y)
	if !ok {
		m.viewport.BeginPan(msg.X)
		return m, nil
	}

	m.selectedEventID = event.ID
	now := m.clock()
	if mode == DragMove && event.ID == m.lastClickEventID && now.Sub(m.lastClickAt) <= doubleClickWindow {
		m.lastClickEventID = ""
		return m, m.startRename(event)
	}
	m.lastClickEventID = event.ID
	m.lastClickAt = now

	m.drag = BeginDrag(event, mode, msg.X, m.timeRange.TotalDays(), m.viewport.TrackWidth(m.timeRange.TotalDays()))
	return m, nil
}

// handleMouseMotion feeds pointer movement into the active drag or pan
// session. With no session active this is a no-op.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if m.drag != nil {
		m.drag.Pointer(msg.X)
		return m, nil
	}
	if m.viewport.Panning() {
		m.viewport.PanTo(msg.X)
		if m.hasRange {
			m.viewport.ClampScroll(m.timeRange.TotalDays())
		}
		return m, nil
	}
	return m, nil
}

// handleMouseRelease ends the active session. A drag that moved commits
// exactly one partial update; a drag that ended where it started emits
// nothing.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseLeft {
		return m, nil
	}
	if m.viewport.Panning() {
		m.viewport.EndPan()
		return m, nil
	}
	if m.drag == nil {
		return m, nil
	}
	session := *m.drag
	m.drag = nil
	input, ok := session.Commit()
	if !ok {
		return m, nil
	}
	// Optimistic local update so the bar does not snap back while the
	// commit round-trips.
	for i := range m.events {
		if m.events[i].ID == session.EventID {
			m.events[i].Start = session.Start
			m.events[i].End = session.End
		}
	}
	m.recomputeLayout()
	return m, func() tea.Msg {
		updated, err := m.svc.UpdateEvent(context.Background(), input)
		if err != nil {
			return actionMsg{err: err, reload: true}
		}
		return actionMsg{
			status:       fmt.Sprintf("event moved to %s → %s", domain.FormatDay(updated.Start), domain.FormatDay(updated.End)),
			reload:       true,
			focusEventID: updated.ID,
		}
	}
}

// handleMouseWheel zooms around the current view.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseWheelUp:
		m.viewport.ZoomIn()
	case tea.MouseWheelDown:
		m.viewport.ZoomOut()
	case tea.MouseWheelLeft:
		m.viewport.ScrollBy(-2 * m.viewport.DayWidth())
	case tea.MouseWheelRight:
		m.viewport.ScrollBy(2 * m.viewport.DayWidth())
	}
	if m.hasRange {
		m.viewport.ClampScroll(m.timeRange.TotalDays())
	}
	return m, nil
}

// hitTest resolves a viewport cell to an event bar and drag mode. The
// first and last bar cells are resize handles once the bar is wide
// enough to expose them.
func (m Model) hitTest(x, y int) (domain.Event, DragMode, bool) {
	laneIdx := y - boardTopRows
	if laneIdx < 0 || laneIdx >= len(m.lanes) {
		return domain.Event{}, DragMove, false
	}
	trackX := x + int(m.viewport.ScrollOffset)
	for _, event := range m.lanes[laneIdx] {
		display := m.displayEvent(event)
		startCol, endCol := m.eventTrackCols(display)
		if trackX < startCol || trackX > endCol {
			continue
		}
		width := endCol - startCol + 1
		switch {
		case width >= 3 && trackX == startCol:
			return event, DragResizeStart, true
		case width >= 3 && trackX == endCol:
			return event, DragResizeEnd, true
		default:
			return event, DragMove, true
		}
	}
	return domain.Event{}, DragMove, false
}

// eventTrackCols maps an event to its inclusive column span on the full
// track, before viewport scrolling.
func (m Model) eventTrackCols(event domain.Event) (int, int) {
	track := m.viewport.TrackWidth(m.timeRange.TotalDays())
	left := m.timeRange.PositionPercent(event.Start) / 100 * track
	width := m.timeRange.WidthPercent(event.Start, event.End) / 100 * track
	startCol := int(left)
	endCol := int(left+width) - 1
	if endCol < startCol {
		endCol = startCol
	}
	return startCol, endCol
}

// --- view ---

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		v := tea.NewView("error: " + m.err.Error() + "\n\npress r to retry • q quit\n")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}
	if !m.ready {
		v := tea.NewView("loading...")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)
	hintStyle := lipgloss.NewStyle().Foreground(muted)

	var content string
	if !m.hasRange {
		sections := []string{
			titleStyle.Render("strand"),
			"",
			"No events yet.",
			"Press n to add your first event.",
			"Press q to quit.",
		}
		if strings.TrimSpace(m.status) != "" && m.status != "ready" {
			sections = append(sections, "", statusStyle.Render(m.status))
		}
		content = strings.Join(sections, "\n")
	} else {
		header := titleStyle.Render("strand") +
			"  " + domain.FormatDay(m.timeRange.Start) + " → " + domain.FormatDay(m.timeRange.End) +
			statusStyle.Render(fmt.Sprintf("  zoom %d%%", m.viewport.ZoomPercent()))
		if m.drag != nil {
			header += statusStyle.Render("  dragging: " + domain.FormatDay(m.drag.Start) + " → " + domain.FormatDay(m.drag.End))
		}

		sections := []string{header}
		sections = append(sections, m.renderAxis(accent, muted, dim)...)
		for laneIdx, lane := range m.lanes {
			sections = append(sections, m.renderLaneRow(laneIdx, lane))
		}
		if strings.TrimSpace(m.status) != "" && m.status != "ready" {
			sections = append(sections, "", statusStyle.Render(m.status))
		}
		content = strings.Join(sections, "\n")
	}

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		helpHeight := lipgloss.Height(helpLine)
		content = fitLines(content, max(0, m.height-helpHeight))
	}
	fullContent := content + "\n" + helpLine

	if overlay := m.renderModeOverlay(accent, muted, hintStyle, m.width-8); overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}

	v := tea.NewView(fullContent)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// renderAxis renders the label row and tick row for the date axis.
func (m Model) renderAxis(accent, muted, dim color.Color) []string {
	labelStyle := lipgloss.NewStyle().Foreground(muted)
	monthStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	tickStyle := lipgloss.NewStyle().Foreground(dim)
	todayStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))

	labels := make([]rune, m.viewport.Width)
	ticks := make([]rune, m.viewport.Width)
	monthAt := map[int]bool{}
	for i := range labels {
		labels[i] = ' '
		ticks[i] = ' '
	}

	track := m.viewport.TrackWidth(m.timeRange.TotalDays())
	for _, marker := range AxisMarkers(m.timeRange, m.viewport.Zoom) {
		col := int(m.timeRange.PositionPercent(marker.Day)/100*track) - int(m.viewport.ScrollOffset)
		if col < 0 || col >= m.viewport.Width {
			continue
		}
		tick := '╵'
		if marker.IsMonth {
			tick = '┼'
			monthAt[col] = true
		}
		ticks[col] = tick
		for i, r := range marker.Label {
			at := col + i
			if at >= m.viewport.Width {
				break
			}
			labels[at] = r
			if marker.IsMonth {
				monthAt[at] = true
			}
		}
	}

	todayCol := -1
	if today := domain.NormalizeDay(m.clock()); m.timeRange.Contains(today) {
		todayCol = int(m.timeRange.PositionPercent(today)/100*track) - int(m.viewport.ScrollOffset)
	}

	var labelRow, tickRow strings.Builder
	for i := 0; i < m.viewport.Width; i++ {
		lr := string(labels[i])
		tr := string(ticks[i])
		if monthAt[i] {
			labelRow.WriteString(monthStyle.Render(lr))
		} else {
			labelRow.WriteString(labelStyle.Render(lr))
		}
		if i == todayCol {
			tickRow.WriteString(todayStyle.Render("▾"))
		} else {
			tickRow.WriteString(tickStyle.Render(tr))
		}
	}
	return []string{labelRow.String(), tickRow.String()}
}

// renderLaneRow renders one lane of bars clipped to the viewport.
func (m Model) renderLaneRow(laneIdx int, lane domain.Lane) string {
	var b strings.Builder
	cursor := 0
	for _, event := range lane {
		display := m.displayEvent(event)
		startCol, endCol := m.eventTrackCols(display)
		startCol -= int(m.viewport.ScrollOffset)
		endCol -= int(m.viewport.ScrollOffset)
		if endCol < cursor || startCol >= m.viewport.Width {
			continue
		}
		if startCol < cursor {
			startCol = cursor
		}
		if endCol >= m.viewport.Width {
			endCol = m.viewport.Width - 1
		}
		width := endCol - startCol + 1
		if width <= 0 {
			continue
		}
		b.WriteString(strings.Repeat(" ", startCol-cursor))

		label := padRight(truncate(" "+display.Name, width), width)
		b.WriteString(m.barStyle(display, event.ID).Render(label))
		cursor = endCol + 1
	}
	return b.String()
}

// barStyle picks the bar styling from duration class and selection.
func (m Model) barStyle(event domain.Event, id string) lipgloss.Style {
	var bg color.Color
	switch event.DurationClass() {
	case domain.DurationShort:
		bg = lipgloss.Color("29")
	case domain.DurationMedium:
		bg = lipgloss.Color("62")
	default:
		bg = lipgloss.Color("131")
	}
	style := lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color("252"))
	if id == m.selectedEventID {
		style = style.Bold(true).Foreground(lipgloss.Color("229"))
	}
	if m.drag != nil && m.drag.EventID == id {
		style = style.Bold(true).Underline(true)
	}
	return style
}

// renderModeOverlay renders output for the current modal state.
func (m Model) renderModeOverlay(accent, muted color.Color, hintStyle lipgloss.Style, maxWidth int) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	if maxWidth > 0 {
		boxStyle = boxStyle.Width(clamp(maxWidth, 28, 72))
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)

	switch m.mode {
	case modeRenameEvent:
		lines := []string{
			titleStyle.Render("Rename Event"),
			m.renameInput.View(),
			hintStyle.Render("enter save • esc cancel"),
		}
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeZoomInput:
		lines := []string{
			titleStyle.Render("Set Zoom"),
			m.zoomInput.View(),
			hintStyle.Render(fmt.Sprintf("percent, %d-%d • enter apply • esc close", int(m.timeline.ZoomMin*100), int(m.timeline.ZoomMax*100))),
		}
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeAddEvent:
		fieldNames := []string{"name", "start", "end", "notes"}
		lines := []string{titleStyle.Render("New Event")}
		for i, in := range m.formInputs {
			marker := "  "
			if i == m.formFocus {
				marker = "> "
			}
			lines = append(lines, marker+fieldNames[i]+": "+in.View())
		}
		lines = append(lines, hintStyle.Render("enter create • tab next field • esc cancel"))
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeEventInfo:
		event, ok := m.eventByID(m.infoEventID)
		if !ok {
			return ""
		}
		lines := []string{
			titleStyle.Render("Event Info"),
			event.Name,
			hintStyle.Render(fmt.Sprintf("%s → %s • %d days • %s",
				domain.FormatDay(event.Start), domain.FormatDay(event.End), event.DurationDays(), event.DurationClass())),
		}
		if strings.TrimSpace(event.Notes) != "" {
			renderer := m.notes
			lines = append(lines, "", renderer.render(event.Notes, clamp(maxWidth-4, 24, 68)))
		}
		lines = append(lines, "", hintStyle.Render("esc close"))
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeConfirmDelete:
		event, ok := m.eventByID(m.confirmEventID)
		if !ok {
			return ""
		}
		lines := []string{
			titleStyle.Render("Delete Event"),
			fmt.Sprintf("Delete %q?", event.Name),
			hintStyle.Render("y/enter delete • n/esc cancel"),
		}
		return boxStyle.Render(strings.Join(lines, "\n"))
	}

	if m.help.ShowAll {
		helpBubble := m.help
		helpBubble.SetWidth(clamp(maxWidth, 28, 96))
		return boxStyle.Render(titleStyle.Render("Keys") + "\n" + helpBubble.View(m.keys))
	}
	return ""
}

// --- helpers ---

func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= maxRunes {
		return s
	}
	if maxRunes <= 1 {
		return string(rs[:maxRunes])
	}
	return string(rs[:maxRunes-1]) + "…"
}

func padRight(s string, width int) string {
	gap := width - len([]rune(s))
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}
