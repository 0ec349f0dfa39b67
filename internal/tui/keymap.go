package tui

import "charm.land/bubbles/v2/key"

// keyMap holds every binding the timeline reacts to.
type keyMap struct {
	quit       key.Binding
	reload     key.Binding
	toggleHelp key.Binding
	prevEvent  key.Binding
	nextEvent  key.Binding
	laneUp     key.Binding
	laneDown   key.Binding
	panLeft    key.Binding
	panRight   key.Binding
	zoomIn     key.Binding
	zoomOut    key.Binding
	zoomReset  key.Binding
	zoomInput  key.Binding
	jumpToday  key.Binding
	addEvent   key.Binding
	renameNow  key.Binding
	eventInfo  key.Binding
	deleteNow  key.Binding
	yank       key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		prevEvent:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "previous event")),
		nextEvent:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next event")),
		laneUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "lane up")),
		laneDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "lane down")),
		panLeft:    key.NewBinding(key.WithKeys("H", "shift+left"), key.WithHelp("H", "pan left")),
		panRight:   key.NewBinding(key.WithKeys("L", "shift+right"), key.WithHelp("L", "pan right")),
		zoomIn:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		zoomOut:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		zoomReset:  key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset zoom")),
		zoomInput:  key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "set zoom %")),
		jumpToday:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "jump to today")),
		addEvent:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new event")),
		renameNow:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename event")),
		eventInfo:  key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i/enter", "event info")),
		deleteNow:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete event")),
		yank:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy summary")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addEvent, k.eventInfo, k.renameNow, k.zoomIn, k.zoomOut, k.jumpToday, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addEvent, k.eventInfo, k.renameNow, k.deleteNow, k.yank, k.reload, k.toggleHelp, k.quit},
		{k.prevEvent, k.nextEvent, k.laneUp, k.laneDown, k.panLeft, k.panRight},
		{k.zoomIn, k.zoomOut, k.zoomReset, k.zoomInput, k.jumpToday},
	}
}
