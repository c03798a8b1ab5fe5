package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelver/internal/lazyload"
)

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderTable())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader shows the app name, library and server connectivity.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := newBand(m.theme.Surface)

	parts := []string{bg.Render("shelver", styles.Logo)}
	if m.library != nil {
		parts = append(parts, bg.Render(m.library.Name, styles.Text))
	}
	if m.serverURL != "" {
		parts = append(parts, bg.Render(m.serverURL, styles.MutedText))
	}

	status, label := m.serverBadge()
	parts = append(parts, styles.StatusStyle(status).Render(label))

	return bg.FillLine(bg.Join(parts, "  "), m.width)
}

// serverBadge maps the poller state to a status key and label.
func (m Model) serverBadge() (string, string) {
	switch {
	case m.status.Offline():
		label := "OFFLINE"
		if d := m.status.OfflineFor(time.Now()); d >= time.Second {
			label += " " + d.Truncate(time.Second).String()
		}
		return "offline", label
	case !m.status.Known:
		return "checking", "CONNECTING"
	default:
		version := strings.TrimSpace(m.status.Status.ServerVersion)
		return "online", strings.TrimSpace("ONLINE " + version)
	}
}

// renderTabs renders the tab bar, or the breadcrumb of an open series.
func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	bg := newBand(m.theme.Background)

	if m.drill != nil {
		crumb := bg.Render("Series", styles.MutedText) +
			bg.Render(" › ", styles.FaintText) +
			bg.Render(m.drill.title(), styles.AccentText.Bold(true)) +
			bg.Render("  (esc to go back)", styles.FaintText)
		return bg.FillLine(crumb, m.width)
	}

	parts := make([]string, 0, len(m.tabs))
	for i, p := range m.tabs {
		label := fmt.Sprintf(" %d %s ", i+1, p.title())
		if i == m.active {
			parts = append(parts, styles.Selected.Bold(true).Render(label))
		} else {
			parts = append(parts, bg.Render(label, styles.MutedText))
		}
	}
	return bg.FillLine(bg.Join(parts, " "), m.width)
}

// renderTable renders the column titles and the visible rows.
func (m Model) renderTable() string {
	styles := m.theme.Styles()
	height := m.listHeight()
	p := m.current()
	if p == nil {
		return lipgloss.NewStyle().Height(height + 1).Render(styles.MutedText.Render("No collections in this library."))
	}

	cols := p.columns(m.width)
	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = padRight(c.Title, c.Width)
	}

	var lines []string
	lines = append(lines, styles.AccentText.Bold(true).Render(strings.Join(titles, " ")))

	if p.len() == 0 {
		lines = append(lines, styles.MutedText.Render(m.emptyMessage(p.view())))
	}

	end := min(p.offset()+height, p.len())
	for i := p.offset(); i < end; i++ {
		cells := p.row(i, m.width)
		for j := range cells {
			if j < len(cols) {
				cells[j] = padRight(cells[j], cols[j].Width)
			}
		}
		line := strings.Join(cells, " ")
		if i == p.cursor() {
			line = styles.Selected.Width(m.width).Render(line)
		} else {
			line = styles.Text.Render(line)
		}
		lines = append(lines, line)
	}

	for len(lines) < height+1 {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) emptyMessage(v paneView) string {
	switch v.Status {
	case lazyload.StatusLoading:
		return "Loading..."
	case lazyload.StatusFailed:
		return "Nothing loaded."
	default:
		return "No items."
	}
}

// renderFooter shows the load state on the left and position, sort and
// counts on the right.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	bg := newBand(m.theme.Surface)
	p := m.current()
	if p == nil {
		return bg.FillLine("", m.width)
	}
	v := p.view()

	var left string
	switch v.Status {
	case lazyload.StatusLoading:
		left = bg.Render(m.spinner.View()+" Loading", styles.InfoText)
	case lazyload.StatusFailed:
		msg := "Load failed, press r to retry"
		if v.Err != nil {
			msg += ": " + truncate(v.Err.Error(), max(m.width/2, 20))
		}
		left = bg.Render(msg, styles.DangerText)
	case lazyload.StatusExhausted:
		left = bg.Render("End of list", styles.SuccessText)
	default:
		left = bg.Render("Ready", styles.MutedText)
	}
	if m.notice != "" {
		left += bg.Render("  "+m.notice, styles.WarningText)
	}

	direction := ternary(v.Ascending, "↑", "↓")
	sortLabel := v.SortLabel + " " + direction
	if v.Sortable {
		sortLabel = "Sort: " + sortLabel
	} else {
		sortLabel = "Order: " + sortLabel
	}

	position := 0
	if p.len() > 0 {
		position = p.cursor() + 1
	}
	loaded := bg.Render(fmt.Sprintf("%d/%d loaded", v.Loaded, v.Total), styles.Text)
	if v.Remaining > 0 && v.Status != lazyload.StatusExhausted {
		loaded += bg.Render(fmt.Sprintf(", %d more", v.Remaining), styles.FaintText)
	}
	right := bg.Join([]string{
		bg.Render(sortLabel, styles.MutedText),
		loaded,
		bg.Render(fmt.Sprintf("row %d", position), styles.FaintText),
	}, "  ")

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return styles.Footer.Width(m.width).Render(left + bg.Spaces(gap) + right)
}
