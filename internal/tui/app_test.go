package tui

import (
	"errors"
	"image"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jask/mapmark/internal/input"
	"github.com/jask/mapmark/internal/mapview"
	"github.com/jask/mapmark/internal/marker"
	"github.com/jask/mapmark/internal/view"
)

var testColors = map[marker.Color]lipgloss.Color{
	"red":   "#f38ba8",
	"green": "#a6e3a1",
	"blue":  "#89b4fa",
}

var testPalette = []input.Swatch{
	{Color: "red", Key: "1"},
	{Color: "green", Key: "2"},
	{Color: "blue", Key: "3"},
}

func newTestModelWithLoader(t *testing.T, load func(string) (image.Image, error)) Model {
	t.Helper()
	surface := mapview.New(mapview.Options{MinZoom: -7, MaxZoom: 4}, testColors, zerolog.Nop())
	store := marker.NewStore(surface, zerolog.Nop())
	ctrl, err := input.New(store, surface, testPalette, "red", zerolog.Nop())
	require.NoError(t, err)

	m := New(ctrl, surface, Options{
		ImagePath:    "map.png",
		Bounds:       mapview.Bounds{Width: 640, Height: 640},
		SidebarWidth: 36,
		Colors:       testColors,
		LoadImage:    load,
	}, zerolog.Nop())
	m = update(t, m, m.Init()())
	// 64x27 map pane at zoom -4: 16 units per column, 32 per row.
	return update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	return newTestModelWithLoader(t, func(string) (image.Image, error) {
		return image.NewRGBA(image.Rect(0, 0, 64, 64)), nil
	})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out
}

func keyMsg(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		m = update(t, m, k)
	}
	return m
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	ctrlD = tea.KeyMsg{Type: tea.KeyCtrlD}
)

func TestInitialLayout(t *testing.T) {
	m := newTestModel(t)
	require.Equal(t, 64, m.mapCols())
	require.Equal(t, 27, m.mapRows())
	require.Equal(t, -4, m.surface.Zoom())
	require.Equal(t, "Map loaded. Press a to start adding markers.", m.status)

	out := m.View()
	require.Contains(t, out, "Add Marker")
	require.Contains(t, out, "No markers yet.")
	require.Len(t, strings.Split(out, "\n"), 30)
}

func TestImageLoadFailureShowsPanel(t *testing.T) {
	m := newTestModelWithLoader(t, func(string) (image.Image, error) {
		return nil, errors.New("no such file")
	})
	require.True(t, m.statusErr)
	require.Contains(t, m.status, "no such file")
	require.Contains(t, m.View(), "map image failed to load")

	m = press(t, m, keyMsg("a"), enter)
	require.Equal(t, 1, m.ctrl.Projection().Counter, "markers can still be placed")
}

func TestKeyboardPlacement(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keyMsg("a"))
	require.Equal(t, input.Placing, m.ctrl.State().Mode)
	require.Equal(t, scopePlacing, m.activeScope())
	require.Contains(t, m.View(), "Cancel Adding")

	m = press(t, m, enter)
	p := m.ctrl.Projection()
	require.Equal(t, 1, p.Counter)
	require.Equal(t, "X:320, Y:320", p.List.Items[0].Coordinates)
	require.Equal(t, "Added Marker 1 at X:320, Y:320.", m.status)

	m = press(t, m, esc)
	require.Equal(t, input.Idle, m.ctrl.State().Mode)
	require.Equal(t, scopeMap, m.activeScope())

	m = press(t, m, enter)
	require.Equal(t, 1, m.ctrl.Projection().Counter, "enter does nothing while idle")
}

func TestMouseClickPlacement(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, click(40, 5))
	require.Equal(t, 0, m.ctrl.Projection().Counter, "idle clicks never add")

	m = press(t, m, keyMsg("a"))
	m = update(t, m, click(40, 5))
	p := m.ctrl.Projection()
	require.Equal(t, 1, p.Counter)
	require.Equal(t, "X:456, Y:32", p.List.Items[0].Coordinates)

	m = update(t, m, click(1, 5))
	require.Equal(t, 1, m.ctrl.Projection().Counter)
	require.Equal(t, "That spot is outside the map.", m.status)
}

func TestPointerReadout(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tea.MouseMsg{X: 40, Y: 5, Action: tea.MouseActionMotion})
	require.True(t, m.pointerOnMap)
	require.Contains(t, m.renderStatus(), "X:456, Y:32")

	m = update(t, m, tea.MouseMsg{X: 90, Y: 5, Action: tea.MouseActionMotion})
	require.False(t, m.pointerOnMap)
	require.NotContains(t, m.renderStatus(), "X:456")
}

func TestHoverWithoutButtonUpdatesReadout(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	m = update(t, m, tea.MouseMsg{X: 40, Y: 5, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	require.True(t, m.ctrl.State().PointerValid)
	require.Contains(t, m.renderStatus(), "X:456, Y:32")
	require.Len(t, ProgramOptions(), 2)
}

func TestColorKeysSelectSwatch(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keyMsg("2"))
	require.Equal(t, marker.Color("green"), m.ctrl.State().SelectedColor)

	m = press(t, m, keyMsg("a"), keyMsg("3"), enter)
	require.Equal(t, marker.Color("blue"), m.ctrl.Projection().List.Items[0].Color)
}

func TestSidebarClicks(t *testing.T) {
	m := newTestModel(t)
	// Rows: title, blank, "Color", red, green, blue, blank, add, clear.
	m = update(t, m, click(70, 1+4))
	require.Equal(t, marker.Color("green"), m.ctrl.State().SelectedColor)

	m = update(t, m, click(70, 1+7))
	require.Equal(t, input.Placing, m.ctrl.State().Mode)

	m = press(t, m, enter)
	m = update(t, m, click(70, 1+7))
	require.Equal(t, input.Idle, m.ctrl.State().Mode)

	// first list row sits under the search box
	m = update(t, m, click(70, 1+12))
	require.True(t, m.detailOpen)
	require.Equal(t, focusList, m.focus)
}

func TestClickMarkerOpensDetailAndSavesNote(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keyMsg("a"), enter, esc)

	col, row, ok := m.surface.MapToScreen(marker.Position{X: 320, Y: 320})
	require.True(t, ok)
	m = update(t, m, click(col, row+headerHeight))
	require.True(t, m.detailOpen)
	require.Equal(t, scopeDetail, m.activeScope())
	require.Contains(t, m.View(), "Marker 1")

	m = press(t, m, keyMsg("goal 2"))
	require.Equal(t, marker.Color("red"), m.ctrl.State().SelectedColor, "digits are text inside the note")

	m = press(t, m, enter)
	require.False(t, m.detailOpen)
	require.Equal(t, "goal 2", m.ctrl.Projection().List.Items[0].Note)
	require.Equal(t, "Saved note for Marker 1.", m.status)
}

func TestDetailEscapeDiscardsEdit(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keyMsg("a"), enter, esc, tab, enter)
	require.True(t, m.detailOpen)

	m = press(t, m, keyMsg("draft"), esc)
	require.False(t, m.detailOpen)
	require.Equal(t, "", m.ctrl.Projection().List.Items[0].Note)
}

func TestDetailRemoveFollowsReindex(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keyMsg("a"), enter, keyMsg("l"), enter, esc)
	require.Equal(t, 2, m.ctrl.Projection().Counter)

	m = press(t, m, tab, keyMsg("j"), enter)
	require.True(t, m.detailOpen)
	d, ok := m.surface.DetailView(m.detailHandle)
	require.True(t, ok)
	require.Equal(t, 1, d.ID)

	// the open marker shifts down to id 0
	_, err := m.ctrl.Dispatch(input.Remove{ID: 0, Source: input.SourceList})
	require.NoError(t, err)
	require.Contains(t, m.detailView(), "Marker 1")

	m = press(t, m, ctrlD)
	require.False(t, m.detailOpen)
	require.Equal(t, 0, m.ctrl.Projection().Counter)
	require.Equal(t, 0, m.surface.VisualCount())
}

func TestListNavigationAndRemove(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keyMsg("a"), enter, keyMsg("l"), enter, keyMsg("l"), enter, esc)
	require.Equal(t, 3, m.ctrl.Projection().Counter)

	m = press(t, m, tab)
	require.Equal(t, scopeList, m.activeScope())
	m = press(t, m, keyMsg("j"), keyMsg("j"), keyMsg("j"))
	require.Equal(t, 2, m.listCursor, "cursor stops at the last entry")

	m = press(t, m, keyMsg("k"), keyMsg("d"))
	require.Equal(t, "Removed Marker 2.", m.status)
	p := m.ctrl.Projection()
	require.Equal(t, 2, p.Counter)
	require.Equal(t, []string{"Marker 1", "Marker 2"}, []string{p.List.Items[0].Label, p.List.Items[1].Label})

	m = press(t, m, keyMsg("d"), keyMsg("d"), keyMsg("d"))
	require.Equal(t, 0, m.ctrl.Projection().Counter)
	require.Equal(t, view.EmptyNoMarkers, m.ctrl.Projection().List.Empty)

	m = press(t, m, esc)
	require.Equal(t, focusMap, m.focus)
}

func TestListFocusKeepsEscapeAndColorKeys(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keyMsg("a"), tab)
	require.Equal(t, input.Placing, m.ctrl.State().Mode)
	require.Equal(t, scopeList, m.activeScope())

	m = press(t, m, keyMsg("3"))
	require.Equal(t, marker.Color("blue"), m.ctrl.State().SelectedColor)
	require.Equal(t, "Color: blue", m.status)
	require.Equal(t, focusList, m.focus)

	m = press(t, m, esc)
	require.Equal(t, input.Idle, m.ctrl.State().Mode)
	require.Equal(t, focusMap, m.focus)
	require.Equal(t, "Stopped adding markers.", m.status)

	m = press(t, m, tab, keyMsg("2"), esc)
	require.Equal(t, marker.Color("green"), m.ctrl.State().SelectedColor)
	require.Equal(t, input.Idle, m.ctrl.State().Mode)
	require.Equal(t, focusMap, m.focus)
}

func TestSearchIsLiveAndKeepsDigitsAsText(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keyMsg("a"), enter, keyMsg("l"), enter, esc)
	m = press(t, m, tab, enter, keyMsg("boss room"), enter)

	m = press(t, m, keyMsg("/"))
	require.Equal(t, scopeSearch, m.activeScope())
	m = press(t, m, keyMsg("B"), keyMsg("o"))
	p := m.ctrl.Projection()
	require.Equal(t, "Bo", p.Filter)
	require.Len(t, p.List.Items, 1)
	require.Equal(t, 0, p.List.Items[0].ID)

	m = press(t, m, keyMsg("x"))
	require.Equal(t, view.EmptyNoResults, m.ctrl.Projection().List.Empty)
	require.False(t, m.confirmOpen, "x is text while searching")
	require.Contains(t, m.View(), "No markers match this search.")

	m = press(t, m, esc)
	require.Equal(t, focusMap, m.focus)
	require.Equal(t, "", m.ctrl.Projection().Filter)
	require.Len(t, m.ctrl.Projection().List.Items, 2)

	m = press(t, m, keyMsg("/"), keyMsg("2"))
	require.Equal(t, marker.Color("red"), m.ctrl.State().SelectedColor)
	require.Equal(t, "2", m.ctrl.Projection().Filter)
	require.Len(t, m.ctrl.Projection().List.Items, 1)

	m = press(t, m, enter)
	require.Equal(t, focusList, m.focus, "enter keeps the filter and moves to the list")
	require.Equal(t, "2", m.ctrl.Projection().Filter)
}

func TestSearchSuggestion(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keyMsg("a"), enter, esc, tab, enter, keyMsg("boss room"), enter)
	m = press(t, m, keyMsg("/"), keyMsg("bos rom"))
	require.Equal(t, "boss room", m.ctrl.Projection().List.Suggestion)
	require.Contains(t, m.View(), "Did you mean")
}

func TestClearAllNeedsConfirmation(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keyMsg("x"))
	require.False(t, m.confirmOpen)
	require.Equal(t, "No markers to clear.", m.status)

	m = press(t, m, keyMsg("a"), enter, keyMsg("l"), enter, esc)
	m = press(t, m, keyMsg("x"))
	require.True(t, m.confirmOpen)
	require.Equal(t, scopeConfirm, m.activeScope())
	require.Contains(t, m.View(), "Clear all markers?")

	m = update(t, m, click(40, 5))
	require.True(t, m.confirmOpen, "mouse is ignored while confirming")

	m = press(t, m, keyMsg("n"))
	require.False(t, m.confirmOpen)
	require.Equal(t, 2, m.ctrl.Projection().Counter)

	m = press(t, m, keyMsg("x"), keyMsg("y"))
	require.False(t, m.confirmOpen)
	require.Equal(t, 0, m.ctrl.Projection().Counter)
	require.Equal(t, 0, m.surface.VisualCount())
	require.Equal(t, "Cleared 2 markers.", m.status)
}

func TestZoomAndPanKeys(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keyMsg("+"), keyMsg("+"))
	require.Equal(t, -2, m.surface.Zoom())
	m = press(t, m, keyMsg("-"))
	require.Equal(t, -3, m.surface.Zoom())

	m = update(t, m, tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	require.Equal(t, -4, m.surface.Zoom())

	before := m.surface.Center()
	m = press(t, m, keyMsg("l"))
	require.Greater(t, m.surface.Center().X, before.X)

	m = press(t, m, keyMsg("f"))
	require.Equal(t, marker.Position{X: 320, Y: 320}, m.surface.Center())
	require.Equal(t, -4, m.surface.Zoom())
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())

	m = press(t, m, keyMsg("/"), keyMsg("q"))
	require.Equal(t, focusSearch, m.focus)
	require.Equal(t, "q", m.search.Value(), "q is text while searching")
}
