package tui

// ---------------------------------------------------------------------------
// Overlay precedence: one table for key routing and footer hints
// ---------------------------------------------------------------------------

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/mapmark/internal/input"
)

// overlayEntry defines one level in the overlay precedence chain.
// Guard returns true when this overlay is active.
type overlayEntry struct {
	name    string
	guard   func(m Model) bool
	scope   string
	handler func(m Model, msg tea.KeyMsg) (tea.Model, tea.Cmd)
}

// overlayPrecedence is ordered highest to lowest. The first matching guard
// wins. It is a function to avoid an initialization cycle through the
// handlers.
func overlayPrecedence() []overlayEntry {
	return []overlayEntry{
		{
			name:    "confirm",
			guard:   func(m Model) bool { return m.confirmOpen },
			scope:   scopeConfirm,
			handler: func(m Model, msg tea.KeyMsg) (tea.Model, tea.Cmd) { return m.updateConfirm(msg) },
		},
		{
			name:    "detail",
			guard:   func(m Model) bool { return m.detailOpen },
			scope:   scopeDetail,
			handler: func(m Model, msg tea.KeyMsg) (tea.Model, tea.Cmd) { return m.updateDetail(msg) },
		},
		{
			name:    "search",
			guard:   func(m Model) bool { return m.focus == focusSearch },
			scope:   scopeSearch,
			handler: func(m Model, msg tea.KeyMsg) (tea.Model, tea.Cmd) { return m.updateSearch(msg) },
		},
		{
			name:    "list",
			guard:   func(m Model) bool { return m.focus == focusList },
			scope:   scopeList,
			handler: func(m Model, msg tea.KeyMsg) (tea.Model, tea.Cmd) { return m.updateList(msg) },
		},
	}
}

// dispatchOverlayKey finds the first matching overlay and dispatches the key.
// It reports false when no overlay is active and the map should handle it.
func (m Model) dispatchOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	for _, entry := range overlayPrecedence() {
		if entry.guard(m) {
			result, cmd := entry.handler(m, msg)
			return result, cmd, true
		}
	}
	return m, nil, false
}

// activeScope returns the key scope currently in charge.
func (m Model) activeScope() string {
	for _, entry := range overlayPrecedence() {
		if entry.guard(m) {
			return entry.scope
		}
	}
	if m.ctrl.State().Mode == input.Placing {
		return scopePlacing
	}
	return scopeMap
}
