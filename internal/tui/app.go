// Package tui is the terminal host for the marker viewer: a map pane with a
// sidebar holding the palette, the add toggle, search and the marker list.
package tui

import (
	"fmt"
	"image"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/jask/mapmark/internal/input"
	"github.com/jask/mapmark/internal/mapview"
	"github.com/jask/mapmark/internal/marker"
)

const (
	appName          = "mapmark"
	headerHeight     = 1
	chromeHeight     = 3 // header, status, footer
	minSidebarWidth  = 20
	defaultSidebarW  = 36
	listLinesPerItem = 2
)

type focusArea int

const (
	focusMap focusArea = iota
	focusList
	focusSearch
)

// Options configures the host.
type Options struct {
	ImagePath    string
	Bounds       mapview.Bounds
	SidebarWidth int
	// Colors maps palette names to the terminal colors used for swatches.
	Colors map[marker.Color]lipgloss.Color
	// LoadImage decodes the overlay image. Defaults to mapview.DecodeImage.
	LoadImage func(path string) (image.Image, error)
}

type imageLoadedMsg struct {
	layer mapview.LayerHandle
	img   image.Image
	err   error
}

// Model is the Bubble Tea model of one viewer instance.
type Model struct {
	ctrl    *input.Controller
	surface *mapview.Surface
	keys    *KeyRegistry
	log     zerolog.Logger
	opts    Options
	layer   mapview.LayerHandle

	width  int
	height int
	ready  bool

	focus      focusArea
	listCursor int
	listTop    int
	search     textinput.Model

	detailOpen   bool
	detailHandle marker.VisualHandle
	note         textinput.Model

	confirmOpen  bool
	pointerOnMap bool

	status    string
	statusErr bool
}

// New builds the host and registers the image overlay on surface.
func New(ctrl *input.Controller, surface *mapview.Surface, opts Options, log zerolog.Logger) Model {
	if opts.SidebarWidth < minSidebarWidth {
		opts.SidebarWidth = defaultSidebarW
	}
	if opts.LoadImage == nil {
		opts.LoadImage = mapview.DecodeImage
	}

	layer := surface.CreateOverlayLayer(opts.ImagePath, opts.Bounds)
	surface.FitView(opts.Bounds)

	colorKeys := lo.FilterMap(ctrl.Palette(), func(s input.Swatch, _ int) (string, bool) {
		return s.Key, s.Key != ""
	})

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search notes or labels"
	search.CharLimit = 64

	note := textinput.New()
	note.Prompt = "› "
	note.Placeholder = "add a note"
	note.CharLimit = 200

	return Model{
		ctrl:    ctrl,
		surface: surface,
		keys:    NewKeyRegistry(colorKeys),
		log:     log,
		opts:    opts,
		layer:   layer,
		search:  search,
		note:    note,
		status:  "Loading map…",
	}
}

// ProgramOptions enables the alt screen and reports all mouse motion,
// hover included.
func ProgramOptions() []tea.ProgramOption {
	return []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseAllMotion()}
}

func (m Model) Init() tea.Cmd {
	load, path, layer := m.opts.LoadImage, m.opts.ImagePath, m.layer
	return func() tea.Msg {
		img, err := load(path)
		return imageLoadedMsg{layer: layer, img: img, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case imageLoadedMsg:
		return m.handleImageLoaded(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.surface.Resize(m.mapCols(), m.mapRows())
		m.search.Width = max(m.sidebarInner()-4, 1)
		m.note.Width = max(m.modalInner()-4, 1)
		m.ensureListWindow()
		return m, nil
	case tea.MouseMsg:
		return m.updateMouse(msg)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if next, cmd, ok := m.dispatchOverlayKey(msg); ok {
			return next, cmd
		}
		return m.updateMap(msg)
	}
	return m.updateInputs(msg)
}

func (m Model) View() string {
	if !m.ready {
		return labelStyle.Render(m.status)
	}

	header := m.renderHeader()
	mapView := m.surface.Render(mapview.RenderOptions{
		Crosshair:  m.ctrl.State().Mode == input.Placing,
		Background: colorCrust,
		Accent:     colorAccent,
	})
	mapView = lipgloss.NewStyle().Width(m.mapCols()).Height(m.mapRows()).Render(mapView)
	body := lipgloss.JoinHorizontal(lipgloss.Top, mapView, m.renderSidebar())
	main := header + "\n" + body

	statusLine := m.renderStatus()
	footer := m.renderFooter(m.keys.HelpBindings(m.activeScope()))

	switch {
	case m.confirmOpen:
		return m.composeOverlay(main, statusLine, footer, m.confirmView())
	case m.detailOpen:
		return m.composeOverlay(main, statusLine, footer, m.detailView())
	}
	return m.placeWithFooter(main, statusLine, footer)
}

func (m Model) handleImageLoaded(msg imageLoadedMsg) (tea.Model, tea.Cmd) {
	if err := m.surface.SetOverlayImage(msg.layer, msg.img, msg.err); err != nil {
		m.log.Warn().Err(err).Msg("stale image load")
		return m, nil
	}
	if msg.err != nil {
		m.setError(fmt.Sprintf("Map image failed to load: %v", msg.err))
		return m, nil
	}
	m.status = "Map loaded. Press a to start adding markers."
	m.statusErr = false
	return m, nil
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.detailOpen:
		m.note, cmd = m.note.Update(msg)
	case m.focus == focusSearch:
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

// setError sets the status as an error message (rendered in red).
func (m *Model) setError(msg string) {
	m.status = msg
	m.statusErr = true
}

func (m *Model) setStatus(msg string) {
	m.status = msg
	m.statusErr = false
}

// dispatch forwards ev to the controller. Errors land in the status bar.
func (m *Model) dispatch(ev input.Event) (input.Outcome, bool) {
	out, err := m.ctrl.Dispatch(ev)
	if err != nil {
		m.log.Warn().Err(err).Msgf("%T rejected", ev)
		m.setError(err.Error())
		return out, false
	}
	return out, true
}

func (m Model) mapCols() int {
	return max(m.width-m.opts.SidebarWidth, 1)
}

func (m Model) mapRows() int {
	return max(m.height-chromeHeight, 1)
}

// sidebarInner is the text width inside the sidebar border and padding.
func (m Model) sidebarInner() int {
	return max(m.opts.SidebarWidth-2, 1)
}

// modalInner is the modal text width; the modal stays inside the map pane.
func (m Model) modalInner() int {
	return max(min(48, m.mapCols()-4), 10)
}
