package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/mapmark/internal/input"
	"github.com/jask/mapmark/internal/marker"
	"github.com/jask/mapmark/internal/view"
)

type targetKind int

const (
	targetNone targetKind = iota
	targetSwatch
	targetAdd
	targetClear
	targetSearch
	targetItem
)

// hitTarget is what a mouse click on a sidebar row activates.
type hitTarget struct {
	kind  targetKind
	color marker.Color
	id    int
	index int
}

type sidebarLine struct {
	text   string
	target hitTarget
}

func (m Model) renderHeader() string {
	st := m.ctrl.State()
	left := headerAppStyle.Render(appName)
	if st.Mode == input.Placing {
		left += " " + placingBadgeStyle.Render("PLACING")
	}
	left += "  " + m.swatchDot(st.SelectedColor) + " " + string(st.SelectedColor)
	right := labelStyle.Render(fmt.Sprintf("zoom %d", m.surface.Zoom()))

	inner := m.width - 2
	gap := inner - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		return headerBarStyle.Width(m.width).Render(ellipsize(left, inner))
	}
	return headerBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// sidebarLines lays out the sidebar one row per entry. Rendering and mouse
// hit-testing both read it.
func (m Model) sidebarLines() []sidebarLine {
	lines := m.sidebarControls()
	p := m.ctrl.Projection()

	if p.List.Empty != view.EmptyNone {
		wrapped := lipgloss.NewStyle().Width(m.sidebarInner()).Render(p.List.Empty.Message())
		for _, l := range strings.Split(wrapped, "\n") {
			lines = append(lines, sidebarLine{text: dimStyle.Render(strings.TrimRight(l, " "))})
		}
		if p.List.Suggestion != "" {
			lines = append(lines, sidebarLine{text: hintStyle.Render(fmt.Sprintf("Did you mean %q?", p.List.Suggestion))})
		}
		return lines
	}

	items := p.List.Items
	top := max(0, min(m.listTop, len(items)-1))
	end := min(len(items), top+m.visibleItems())
	for i := top; i < end; i++ {
		it := items[i]
		target := hitTarget{kind: targetItem, id: it.ID, index: i}
		cur := "  "
		if m.focus == focusList && i == m.listCursor {
			cur = cursorStyle.Render("▸ ")
		}
		first := cur + m.swatchDot(it.Color) + " " + it.Label + "  " + coordStyle.Render(it.Coordinates)
		note := dimStyle.Render("no note")
		if it.Note != "" {
			note = noteStyle.Render(it.Note)
		}
		lines = append(lines,
			sidebarLine{text: first, target: target},
			sidebarLine{text: "    " + note, target: target},
		)
	}
	return lines
}

// sidebarControls is everything above the marker list.
func (m Model) sidebarControls() []sidebarLine {
	p := m.ctrl.Projection()
	st := m.ctrl.State()
	blank := sidebarLine{}

	lines := []sidebarLine{
		{text: titleStyle.Render("Markers") + "  " + labelStyle.Render(strconv.Itoa(p.Counter))},
		blank,
		{text: labelStyle.Render("Color")},
	}
	for _, sw := range m.ctrl.Palette() {
		mark := "  "
		if sw.Color == st.SelectedColor {
			mark = cursorStyle.Render("▸ ")
		}
		text := mark + m.swatchDot(sw.Color) + " " + string(sw.Color)
		if sw.Key != "" {
			text += dimStyle.Render(" [" + sw.Key + "]")
		}
		lines = append(lines, sidebarLine{text: text, target: hitTarget{kind: targetSwatch, color: sw.Color}})
	}

	add := buttonStyle
	if st.Mode == input.Placing {
		add = activeButtonStyle
	}
	lines = append(lines,
		blank,
		sidebarLine{text: add.Render(m.ctrl.AddButtonLabel()), target: hitTarget{kind: targetAdd}},
		sidebarLine{text: buttonStyle.Render("Clear All"), target: hitTarget{kind: targetClear}},
		blank,
		sidebarLine{text: m.search.View(), target: hitTarget{kind: targetSearch}},
		blank,
	)
	return lines
}

// visibleItems is how many list entries fit under the controls.
func (m Model) visibleItems() int {
	avail := m.mapRows() - len(m.sidebarControls())
	return max(1, avail/listLinesPerItem)
}

func (m Model) renderSidebar() string {
	lines := m.sidebarLines()
	if len(lines) > m.mapRows() {
		lines = lines[:m.mapRows()]
	}
	width := m.sidebarInner()
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = ellipsize(l.text, width)
	}
	return sidebarStyle.
		Width(m.opts.SidebarWidth - 1).
		Height(m.mapRows()).
		Render(strings.Join(texts, "\n"))
}

func (m Model) swatchDot(c marker.Color) string {
	col, ok := m.opts.Colors[c]
	if !ok {
		return "●"
	}
	return lipgloss.NewStyle().Foreground(col).Render("●")
}

func (m Model) detailView() string {
	d, ok := m.surface.DetailView(m.detailHandle)
	if !ok {
		return dimStyle.Render("This marker was removed.")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(d.Label))
	b.WriteString("\n")
	b.WriteString(coordStyle.Render(d.Position.String()))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Note"))
	b.WriteString("\n")
	b.WriteString(m.note.View())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("enter save · ctrl+d remove · esc close"))
	return b.String()
}

func (m Model) confirmView() string {
	n := m.ctrl.Projection().Counter
	noun := "markers"
	if n == 1 {
		noun = "marker"
	}
	return titleStyle.Render("Clear all markers?") + "\n\n" +
		fmt.Sprintf("This removes %d %s.", n, noun) + "\n\n" +
		dimStyle.Render("y clear all · n keep")
}

func (m Model) renderFooter(bindings []key.Binding) string {
	// Build help text where every character carries the footer background.
	bg := colorMantle
	keyStyle := helpKeyStyle.Background(bg)
	descStyle := helpDescStyle.Background(bg)
	space := lipgloss.NewStyle().Background(bg).Render(" ")
	sep := lipgloss.NewStyle().Background(bg).Render("  ")

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		if help.Key == "" && help.Desc == "" {
			continue
		}
		parts = append(parts, keyStyle.Render(help.Key)+space+descStyle.Render(help.Desc))
	}
	content := strings.Join(parts, sep)

	if m.width == 0 {
		return footerStyle.Render(content)
	}
	return footerStyle.Width(m.width).Render(ellipsize(content, m.width-4))
}

func (m Model) renderStatus() string {
	style := statusBarStyle
	if m.statusErr {
		style = style.Foreground(colorError)
	}
	left := strings.ReplaceAll(m.status, "\n", " ")
	st := m.ctrl.State()
	right := ""
	if m.pointerOnMap && st.PointerValid {
		right = st.Pointer.String()
	}
	if m.width == 0 {
		return style.Render(left)
	}
	inner := m.width - 4
	gap := inner - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		return style.Width(m.width).Render(ellipsize(left, inner))
	}
	return style.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
