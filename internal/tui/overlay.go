package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// rect is a region of the terminal frame, in cells.
type rect struct {
	x, y, w, h int
}

// mapPane is where the map is drawn: under the header, left of the sidebar.
func (m Model) mapPane() rect {
	return rect{x: 0, y: headerHeight, w: m.mapCols(), h: m.mapRows()}
}

// centered returns a w×h rect in the middle of r, shrunk to fit inside it.
func (r rect) centered(w, h int) rect {
	w, h = min(w, r.w), min(h, r.h)
	return rect{x: r.x + (r.w-w)/2, y: r.y + (r.h-h)/2, w: w, h: h}
}

// stamp draws block over frame at r. Every frame row must already be
// exactly width cells; block rows and columns outside r are dropped.
func stamp(frame []string, block string, r rect, width int) []string {
	for i, line := range strings.Split(block, "\n") {
		row := r.y + i
		if i >= r.h || row >= len(frame) {
			break
		}
		if row < 0 {
			continue
		}
		under := frame[row]
		frame[row] = ansi.Cut(under, 0, r.x) + fitCells(line, r.w) + ansi.Cut(under, r.x+r.w, width)
	}
	return frame
}

// fitCells pads or cuts s to exactly width cells.
func fitCells(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := ansi.StringWidth(s)
	switch {
	case w > width:
		return ansi.Cut(s, 0, width)
	case w < width:
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// ellipsize shortens s to width cells, ending in "…" when cut.
func ellipsize(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

// frameRows lays body over the rows above the status bar, each exactly
// m.width cells wide.
func (m Model) frameRows(body string) []string {
	rows := max(m.height-2, 1)
	lines := strings.Split(body, "\n")
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	for i, l := range lines {
		lines[i] = fitCells(l, m.width)
	}
	return lines
}

func (m Model) placeWithFooter(body, statusLine, footer string) string {
	if m.width == 0 || m.height == 0 {
		return body + "\n" + statusLine + "\n" + footer
	}
	return strings.Join(m.frameRows(body), "\n") + "\n" + statusLine + "\n" + footer
}

// composeOverlay centres content in a modal over the map pane. The sidebar,
// status bar and footer stay visible around it.
func (m Model) composeOverlay(body, statusLine, footer, content string) string {
	modal := modalStyle.Render(lipgloss.NewStyle().Width(m.modalInner()).Render(content))
	if m.width == 0 || m.height == 0 {
		return body + "\n\n" + modal + "\n" + statusLine + "\n" + footer
	}
	at := m.mapPane().centered(lipgloss.Width(modal), lipgloss.Height(modal))
	rows := stamp(m.frameRows(body), modal, at, m.width)
	return strings.Join(rows, "\n") + "\n" + statusLine + "\n" + footer
}
