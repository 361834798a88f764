package input

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jask/mapmark/internal/marker"
	"github.com/jask/mapmark/internal/view"
)

type fakeLayer struct {
	next      int
	destroyed int
}

func (l *fakeLayer) CreateVisualMarker(marker.Position, marker.Style) (marker.VisualHandle, error) {
	l.next++
	return marker.VisualHandle(fmt.Sprintf("v%d", l.next)), nil
}

func (l *fakeLayer) DestroyVisualMarker(marker.VisualHandle) { l.destroyed++ }

func (l *fakeLayer) BindDetailView(marker.VisualHandle, marker.Detail) {}

type fakeSurface struct {
	zoom   int
	width  float64
	height float64
}

func (s *fakeSurface) ZoomIn()  { s.zoom++ }
func (s *fakeSurface) ZoomOut() { s.zoom-- }
func (s *fakeSurface) Contains(p marker.Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= s.width && p.Y <= s.height
}

var testPalette = []Swatch{
	{Color: "red", Key: "1"},
	{Color: "green", Key: "2"},
	{Color: "blue", Key: "3"},
	{Color: "gold"},
}

type harness struct {
	ctrl    *Controller
	store   *marker.Store
	layer   *fakeLayer
	surface *fakeSurface
}

func newHarness(t *testing.T) harness {
	t.Helper()
	layer := &fakeLayer{}
	surface := &fakeSurface{width: 1000, height: 1000}
	store := marker.NewStore(layer, zerolog.Nop())
	ctrl, err := New(store, surface, testPalette, "red", zerolog.Nop())
	require.NoError(t, err)
	return harness{ctrl: ctrl, store: store, layer: layer, surface: surface}
}

func (h harness) dispatch(t *testing.T, ev Event) Outcome {
	t.Helper()
	out, err := h.ctrl.Dispatch(ev)
	require.NoError(t, err)
	return out
}

func TestNewRejectsUnknownDefaultColor(t *testing.T) {
	store := marker.NewStore(&fakeLayer{}, zerolog.Nop())
	_, err := New(store, nil, testPalette, "purple", zerolog.Nop())
	require.Error(t, err)

	_, err = New(store, nil, nil, "red", zerolog.Nop())
	require.Error(t, err)
}

func TestModeToggleAndEscape(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, Idle, h.ctrl.State().Mode)
	require.Equal(t, "Add Marker", h.ctrl.AddButtonLabel())

	h.dispatch(t, ToggleAdd{})
	require.Equal(t, Placing, h.ctrl.State().Mode)
	require.Equal(t, "Cancel Adding", h.ctrl.AddButtonLabel())

	out := h.dispatch(t, KeyDown{Key: "esc"})
	require.True(t, out.Handled)
	require.Equal(t, Idle, h.ctrl.State().Mode)

	out = h.dispatch(t, KeyDown{Key: "esc"})
	require.False(t, out.Handled, "escape in idle does nothing")

	h.dispatch(t, ToggleAdd{})
	h.dispatch(t, ToggleAdd{})
	require.Equal(t, Idle, h.ctrl.State().Mode)
}

func TestClickWhileIdleNeverAdds(t *testing.T) {
	h := newHarness(t)

	out := h.dispatch(t, SurfaceClick{Pos: marker.Position{X: 10, Y: 10}})
	require.False(t, out.Handled)
	require.Nil(t, out.Added)
	require.Equal(t, 0, h.store.Len())
	require.Equal(t, 0, h.layer.next)
}

func TestClickWhilePlacingAddsWithSelectedColor(t *testing.T) {
	h := newHarness(t)
	h.dispatch(t, KeyDown{Key: "3"})
	h.dispatch(t, ToggleAdd{})
	require.Equal(t, marker.Color("blue"), h.ctrl.State().SelectedColor, "entering placing keeps the color")

	out := h.dispatch(t, SurfaceClick{Pos: marker.Position{X: 100, Y: 200}})
	require.True(t, out.Changed)
	require.NotNil(t, out.Added)
	require.Equal(t, 0, out.Added.ID)
	require.Equal(t, marker.Color("blue"), out.Added.Color)
	require.Equal(t, 1, out.Projection.Counter)
	require.Len(t, out.Projection.List.Items, 1)
	require.Equal(t, Placing, h.ctrl.State().Mode, "placing stays active after a click")
}

func TestClickOutsideBoundsIgnored(t *testing.T) {
	h := newHarness(t)
	h.dispatch(t, ToggleAdd{})

	out := h.dispatch(t, SurfaceClick{Pos: marker.Position{X: -5, Y: 10}})
	require.False(t, out.Handled)
	require.Equal(t, 0, h.store.Len())
}

func TestColorSelection(t *testing.T) {
	h := newHarness(t)

	h.dispatch(t, KeyDown{Key: "2"})
	require.Equal(t, marker.Color("green"), h.ctrl.State().SelectedColor)

	out := h.dispatch(t, PickColor{Color: "gold"})
	require.True(t, out.Handled)
	require.Equal(t, marker.Color("gold"), h.ctrl.State().SelectedColor)

	out = h.dispatch(t, PickColor{Color: "purple"})
	require.False(t, out.Handled)
	require.Equal(t, marker.Color("gold"), h.ctrl.State().SelectedColor)

	out = h.dispatch(t, KeyDown{Key: "9"})
	require.False(t, out.Handled)
	require.Equal(t, marker.Color("gold"), h.ctrl.State().SelectedColor)
}

func TestRemoveFromListAndDetailBehaveTheSame(t *testing.T) {
	for _, src := range []Source{SourceList, SourceDetail} {
		t.Run(string(src), func(t *testing.T) {
			h := newHarness(t)
			h.dispatch(t, ToggleAdd{})
			h.dispatch(t, SurfaceClick{Pos: marker.Position{X: 100, Y: 200}})
			h.dispatch(t, KeyDown{Key: "3"})
			h.dispatch(t, SurfaceClick{Pos: marker.Position{X: 50, Y: 50}})

			out := h.dispatch(t, Remove{ID: 0, Source: src})
			require.True(t, out.Changed)
			require.Equal(t, 1, out.Projection.Counter)
			require.Equal(t, []view.ListItem{{
				ID:          0,
				Label:       "Marker 1",
				Color:       "blue",
				Coordinates: "X:50, Y:50",
			}}, out.Projection.List.Items)
		})
	}
}

func TestRemoveStaleIDFailsWithoutMutation(t *testing.T) {
	h := newHarness(t)
	h.dispatch(t, ToggleAdd{})
	h.dispatch(t, SurfaceClick{Pos: marker.Position{X: 1, Y: 1}})

	_, err := h.ctrl.Dispatch(Remove{ID: 0, Source: SourceDetail})
	require.NoError(t, err)
	_, err = h.ctrl.Dispatch(Remove{ID: 0, Source: SourceList})
	require.Error(t, err)
	require.True(t, marker.IsOutOfRange(err))
	require.Equal(t, 0, h.ctrl.Projection().Counter)
}

func TestSaveNoteResyncsList(t *testing.T) {
	h := newHarness(t)
	h.dispatch(t, ToggleAdd{})
	h.dispatch(t, SurfaceClick{Pos: marker.Position{X: 1, Y: 1}})
	h.dispatch(t, SurfaceClick{Pos: marker.Position{X: 2, Y: 2}})
	h.dispatch(t, SearchChanged{Text: "boss"})
	require.Equal(t, view.EmptyNoResults, h.ctrl.Projection().List.Empty)

	out := h.dispatch(t, SaveNote{ID: 1, Text: "Boss room"})
	require.True(t, out.Changed)
	require.Len(t, out.Projection.List.Items, 1)
	require.Equal(t, 1, out.Projection.List.Items[0].ID)
	require.Equal(t, 2, out.Projection.Counter)

	_, err := h.ctrl.Dispatch(SaveNote{ID: 7, Text: "x"})
	require.True(t, marker.IsOutOfRange(err))
}

func TestSearchChangedIsLive(t *testing.T) {
	h := newHarness(t)
	h.dispatch(t, ToggleAdd{})
	for i := 0; i < 3; i++ {
		h.dispatch(t, SurfaceClick{Pos: marker.Position{X: float64(i), Y: 0}})
	}
	for _, text := range []string{"m", "ma", "marker 2"} {
		h.dispatch(t, SearchChanged{Text: text})
	}
	p := h.ctrl.Projection()
	require.Equal(t, "marker 2", p.Filter)
	require.Len(t, p.List.Items, 1)
	require.Equal(t, 1, p.List.Items[0].ID)

	h.dispatch(t, SearchChanged{Text: ""})
	require.Len(t, h.ctrl.Projection().List.Items, 3)
}

func TestClearRequiresConfirmation(t *testing.T) {
	h := newHarness(t)

	out := h.dispatch(t, ClearRequested{})
	require.False(t, out.NeedsConfirm, "no prompt with zero markers")
	require.False(t, h.ctrl.State().ConfirmPending)

	h.dispatch(t, ToggleAdd{})
	h.dispatch(t, SurfaceClick{Pos: marker.Position{X: 1, Y: 1}})
	h.dispatch(t, SurfaceClick{Pos: marker.Position{X: 2, Y: 2}})

	out = h.dispatch(t, ClearRequested{})
	require.True(t, out.NeedsConfirm)
	out = h.dispatch(t, ConfirmAnswer{Yes: false})
	require.False(t, out.Changed)
	require.Equal(t, 2, h.store.Len())
	require.Equal(t, 0, h.layer.destroyed)

	h.dispatch(t, ClearRequested{})
	out = h.dispatch(t, ConfirmAnswer{Yes: true})
	require.True(t, out.Changed)
	require.Equal(t, 0, h.store.Len())
	require.Equal(t, 2, h.layer.destroyed)
	require.Equal(t, view.EmptyNoMarkers, out.Projection.List.Empty)

	out = h.dispatch(t, ConfirmAnswer{Yes: true})
	require.False(t, out.Handled, "answer without a pending prompt is ignored")
}

func TestZoomDelegatesToSurface(t *testing.T) {
	h := newHarness(t)
	h.dispatch(t, ZoomIn{})
	h.dispatch(t, ZoomIn{})
	h.dispatch(t, ZoomOut{})
	require.Equal(t, 1, h.surface.zoom)
}

func TestPointerMoveTracksBounds(t *testing.T) {
	h := newHarness(t)
	h.dispatch(t, PointerMove{Pos: marker.Position{X: 10, Y: 20}})
	st := h.ctrl.State()
	require.True(t, st.PointerValid)
	require.Equal(t, marker.Position{X: 10, Y: 20}, st.Pointer)

	h.dispatch(t, PointerMove{Pos: marker.Position{X: 5000, Y: 20}})
	require.False(t, h.ctrl.State().PointerValid)
}
