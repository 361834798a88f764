package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/mapmark/internal/input"
	"github.com/jask/mapmark/internal/marker"
)

func (m Model) updateMap(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	b := m.keys.Lookup(k, m.activeScope())
	if b == nil {
		return m, nil
	}
	switch b.Action {
	case actionQuit:
		return m, tea.Quit
	case actionToggleAdd:
		m.toggleAdd()
	case actionCancel:
		m.cancelPlacing()
	case actionColor:
		m.pickColorKey(normalizeKeyName(k))
	case actionPlace:
		m.place(m.surface.Center())
	case actionPan:
		dx, dy := panDelta(normalizeKeyName(k))
		m.surface.Pan(dx, dy)
	case actionZoomIn:
		m.dispatch(input.ZoomIn{})
	case actionZoomOut:
		m.dispatch(input.ZoomOut{})
	case actionFit:
		m.surface.FitView(m.surface.Bounds())
	case actionSearch:
		return m.focusSearch()
	case actionFocusList:
		m.focus = focusList
		m.ensureListWindow()
	case actionClearAll:
		m.requestClear()
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := normalizeKeyName(msg.String())
	b := m.keys.Lookup(k, scopeList)
	if b == nil {
		return m, nil
	}
	items := m.ctrl.Projection().List.Items
	switch b.Action {
	case actionQuit:
		return m, tea.Quit
	case actionNavigate:
		switch k {
		case "j", "down":
			m.listCursor++
		case "k", "up":
			m.listCursor--
		}
		m.ensureListWindow()
	case actionOpen:
		if m.listCursor < len(items) {
			return m.openDetail(items[m.listCursor].ID)
		}
	case actionRemove:
		if m.listCursor < len(items) {
			m.remove(items[m.listCursor].ID, input.SourceList)
		}
	case actionBack:
		m.focus = focusMap
		if k == "esc" {
			m.cancelPlacing()
		}
	case actionColor:
		m.pickColorKey(k)
	case actionSearch:
		return m.focusSearch()
	case actionClearAll:
		m.requestClear()
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if b := m.keys.lookupInScope(normalizeKeyName(msg.String()), scopeSearch); b != nil {
		switch b.Action {
		case actionConfirm:
			m.search.Blur()
			m.focus = focusList
			m.ensureListWindow()
		case actionClear:
			m.search.SetValue("")
			m.search.Blur()
			m.focus = focusMap
			m.applySearch()
		}
		return m, nil
	}
	prev := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != prev {
		m.applySearch()
	}
	return m, cmd
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if b := m.keys.lookupInScope(normalizeKeyName(msg.String()), scopeDetail); b != nil {
		d, ok := m.surface.DetailView(m.detailHandle)
		if !ok {
			m.closeDetail()
			return m, nil
		}
		switch b.Action {
		case actionSave:
			if _, ok := m.dispatch(input.SaveNote{ID: d.ID, Text: m.note.Value()}); ok {
				m.setStatus(fmt.Sprintf("Saved note for %s.", d.Label))
				m.closeDetail()
				m.ensureListWindow()
			}
		case actionRemove:
			m.remove(d.ID, input.SourceDetail)
			m.closeDetail()
		case actionClose:
			m.closeDetail()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.note, cmd = m.note.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := m.keys.lookupInScope(normalizeKeyName(msg.String()), scopeConfirm)
	if b == nil {
		return m, nil
	}
	n := m.ctrl.Projection().Counter
	switch b.Action {
	case actionConfirm:
		m.confirmOpen = false
		if _, ok := m.dispatch(input.ConfirmAnswer{Yes: true}); ok {
			m.closeDetail()
			m.listCursor, m.listTop = 0, 0
			m.setStatus(fmt.Sprintf("Cleared %d markers.", n))
		}
	case actionCancel:
		m.confirmOpen = false
		m.dispatch(input.ConfirmAnswer{Yes: false})
		m.setStatus("Kept all markers.")
	}
	return m, nil
}

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.confirmOpen {
		return m, nil
	}
	col, row := msg.X, msg.Y-headerHeight
	onMap := col >= 0 && col < m.mapCols() && row >= 0 && row < m.mapRows()
	onSidebar := col >= m.mapCols() && row >= 0 && row < m.mapRows()

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		if onMap {
			m.dispatch(input.ZoomIn{})
		}
	case msg.Button == tea.MouseButtonWheelDown:
		if onMap {
			m.dispatch(input.ZoomOut{})
		}
	case msg.Action == tea.MouseActionMotion:
		m.pointerOnMap = onMap
		if onMap {
			m.dispatch(input.PointerMove{Pos: m.surface.ScreenToMap(col, row)})
		}
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if onMap {
			return m.clickMap(col, row)
		}
		if onSidebar {
			return m.clickSidebar(row)
		}
	}
	return m, nil
}

func (m Model) clickMap(col, row int) (tea.Model, tea.Cmd) {
	if m.detailOpen {
		m.closeDetail()
	}
	if m.ctrl.State().Mode == input.Placing {
		m.place(m.surface.ScreenToMap(col, row))
		return m, nil
	}
	if h, ok := m.surface.HandleAt(col, row); ok {
		if d, ok := m.surface.DetailView(h); ok {
			return m.openDetail(d.ID)
		}
	}
	return m, nil
}

func (m Model) clickSidebar(row int) (tea.Model, tea.Cmd) {
	lines := m.sidebarLines()
	if row >= len(lines) {
		return m, nil
	}
	t := lines[row].target
	switch t.kind {
	case targetSwatch:
		if out, _ := m.dispatch(input.PickColor{Color: t.color}); out.Handled {
			m.setStatus(fmt.Sprintf("Color: %s", t.color))
		}
	case targetAdd:
		m.toggleAdd()
	case targetClear:
		m.requestClear()
	case targetSearch:
		return m.focusSearch()
	case targetItem:
		m.focus = focusList
		m.listCursor = t.index
		m.ensureListWindow()
		return m.openDetail(t.id)
	}
	return m, nil
}

func (m *Model) toggleAdd() {
	if _, ok := m.dispatch(input.ToggleAdd{}); !ok {
		return
	}
	if m.ctrl.State().Mode == input.Placing {
		m.setStatus("Click the map or press enter to place a marker.")
	} else {
		m.setStatus("Stopped adding markers.")
	}
}

func (m *Model) cancelPlacing() {
	if out, _ := m.dispatch(input.KeyDown{Key: "esc"}); out.Handled {
		m.setStatus("Stopped adding markers.")
	}
}

func (m *Model) pickColorKey(k string) {
	if out, _ := m.dispatch(input.KeyDown{Key: k}); out.Handled {
		m.setStatus(fmt.Sprintf("Color: %s", m.ctrl.State().SelectedColor))
	}
}

func (m *Model) place(pos marker.Position) {
	out, ok := m.dispatch(input.SurfaceClick{Pos: pos})
	if !ok {
		return
	}
	if out.Added == nil {
		m.setStatus("That spot is outside the map.")
		return
	}
	m.setStatus(fmt.Sprintf("Added %s at %s.", out.Added.Label(), out.Added.Position))
}

func (m *Model) remove(id int, src input.Source) {
	label := marker.Label(id)
	if _, ok := m.dispatch(input.Remove{ID: id, Source: src}); !ok {
		return
	}
	m.setStatus(fmt.Sprintf("Removed %s.", label))
	m.ensureListWindow()
}

func (m *Model) requestClear() {
	out, ok := m.dispatch(input.ClearRequested{})
	if !ok {
		return
	}
	if out.NeedsConfirm {
		m.confirmOpen = true
		return
	}
	m.setStatus("No markers to clear.")
}

func (m *Model) applySearch() {
	m.dispatch(input.SearchChanged{Text: m.search.Value()})
	m.listCursor, m.listTop = 0, 0
}

func (m Model) focusSearch() (tea.Model, tea.Cmd) {
	m.focus = focusSearch
	cmd := m.search.Focus()
	return m, cmd
}

func (m Model) openDetail(id int) (tea.Model, tea.Cmd) {
	mk, err := m.ctrl.Marker(id)
	if err != nil {
		m.log.Warn().Err(err).Msg("open detail")
		m.setError(err.Error())
		return m, nil
	}
	m.detailOpen = true
	m.detailHandle = mk.Handle
	m.note.SetValue(mk.Note)
	m.note.CursorEnd()
	cmd := m.note.Focus()
	return m, cmd
}

func (m *Model) closeDetail() {
	m.detailOpen = false
	m.detailHandle = ""
	m.note.Blur()
}

// ensureListWindow clamps the list cursor and scrolls it into view.
func (m *Model) ensureListWindow() {
	n := len(m.ctrl.Projection().List.Items)
	if n == 0 {
		m.listCursor, m.listTop = 0, 0
		return
	}
	m.listCursor = max(0, min(m.listCursor, n-1))
	visible := m.visibleItems()
	if m.listCursor < m.listTop {
		m.listTop = m.listCursor
	}
	if m.listCursor >= m.listTop+visible {
		m.listTop = m.listCursor - visible + 1
	}
	m.listTop = max(0, min(m.listTop, n-1))
}

func panDelta(k string) (int, int) {
	const stepX, stepY = 4, 2
	switch k {
	case "h", "left":
		return -stepX, 0
	case "l", "right":
		return stepX, 0
	case "k", "up":
		return 0, -stepY
	case "j", "down":
		return 0, stepY
	}
	return 0, 0
}
