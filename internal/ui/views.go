package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kestrelgs/kestrel/internal/gds"
)

// renderMain renders the full UI: status bar, tab bar, content, hint bar.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewChannels:
		return m.renderChannels()
	case ViewEvents:
		return m.renderEvents()
	case ViewCommands:
		return m.renderCommands()
	case ViewTransfers:
		return m.renderTransfers()
	case ViewLogs:
		return m.renderLogs()
	case ViewStats:
		return m.renderStats()
	case ViewErrors:
		return m.renderErrors()
	default:
		return ""
	}
}

// renderChannels shows the latest reading per telemetry channel.
func (m Model) renderChannels() string {
	styles := m.theme.Styles()
	if m.data == nil || m.data.Channels == nil {
		return m.fillEmpty("no channel data")
	}

	samples := m.data.Channels.Items()
	sort.Slice(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })

	nameWidth := 24
	for _, s := range samples {
		if len(s.Name) > nameWidth {
			nameWidth = len(s.Name)
		}
	}

	lines := make([]string, 0, len(samples))
	for _, s := range samples {
		val := s.DisplayText
		if val == "" {
			val = fmt.Sprint(s.Val)
		}
		lines = append(lines,
			styles.MutedText.Render(s.Time.String())+"  "+
				styles.AccentText.Render(pad(s.Name, nameWidth))+"  "+
				styles.Text.Render(truncate(val, 60)))
	}
	return m.renderScrollable(lines, "no channel data yet")
}

// renderEvents shows the bounded window over the event history.
func (m Model) renderEvents() string {
	styles := m.theme.Styles()
	slice := m.events.Slice()
	st := m.events.State()

	lines := make([]string, 0, len(slice)+1)
	for _, e := range slice {
		class := e.SeverityClass()
		lines = append(lines,
			styles.MutedText.Render(e.Time.String())+"  "+
				styles.SeverityStyle(class).Render(pad(class, 11))+"  "+
				styles.Text.Render(truncate(e.DisplayText, m.width-40)))
	}
	for len(lines) < m.eventRows() {
		lines = append(lines, "")
	}

	status := fmt.Sprintf("events %d-%d of %d", st.Offset+1, st.Offset+len(slice), st.Total)
	if st.Total == 0 {
		status = "no events yet"
	}
	switch {
	case st.Locked:
		status += " · locked"
	case st.Following:
		status += " · following"
	default:
		status += " · parked"
	}
	lines = append(lines, styles.FaintText.Render(status))

	return strings.Join(lines, "\n")
}

// renderCommands shows the command history.
func (m Model) renderCommands() string {
	styles := m.theme.Styles()
	if m.data == nil || m.data.Commands == nil {
		return m.fillEmpty("no command history")
	}

	records := m.data.Commands.Items()
	lines := make([]string, 0, len(records))
	for _, r := range records {
		args := make([]string, 0, len(r.Args))
		for _, a := range r.Args {
			args = append(args, fmt.Sprint(a))
		}
		lines = append(lines,
			styles.MutedText.Render(r.Time.String())+"  "+
				styles.AccentText.Render(r.Name)+
				styles.Text.Render("("+truncate(strings.Join(args, ", "), 50)+")"))
	}
	return m.renderScrollable(lines, "no commands sent yet")
}

// renderTransfers shows uplink and downlink file sets with progress.
func (m Model) renderTransfers() string {
	styles := m.theme.Styles()
	var lines []string

	section := func(title string, files []gds.TransferFile) {
		lines = append(lines, styles.AccentText.Bold(true).Render(title))
		if len(files) == 0 {
			lines = append(lines, styles.FaintText.Render("  none"))
			return
		}
		for _, f := range files {
			state := styles.MutedText
			switch strings.ToUpper(f.State) {
			case "TRANSMITTING", "RECEIVING":
				state = styles.InfoText
			case "FINISHED":
				state = styles.SuccessText
			case "CANCELED", "TIMEOUT":
				state = styles.DangerText
			}
			lines = append(lines, fmt.Sprintf("  %s %s  %s %s %s",
				state.Render(pad(f.State, 12)),
				progressBar(f.Percent, 20),
				styles.Text.Render(truncate(f.Source, 34)),
				styles.FaintText.Render("→"),
				styles.Text.Render(truncate(f.Destination, 34))))
		}
	}

	var up, down []gds.TransferFile
	if m.data != nil && m.data.Uploads != nil {
		up = m.data.Uploads.Items()
	}
	if m.data != nil && m.data.Downloads != nil {
		down = m.data.Downloads.Items()
	}
	section("Uplink", up)
	lines = append(lines, "")
	section("Downlink", down)

	return m.renderScrollable(lines, "")
}

// renderLogs shows the server log list, or the selected log's body.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()

	if m.viewingLog {
		title := styles.AccentText.Bold(true).Render(m.logName)
		return title + "\n" + m.logViewport.View()
	}

	names := m.logNames()
	lines := make([]string, 0, len(names))
	for i, name := range names {
		if i == m.logSelected {
			lines = append(lines, styles.Selected.Render("▸ "+name))
		} else {
			lines = append(lines, styles.Text.Render("  "+name))
		}
	}
	return m.renderScrollable(lines, "no server logs listed")
}

// renderStats shows the server's counters grouped by section.
func (m Model) renderStats() string {
	styles := m.theme.Styles()
	if m.data == nil || m.data.Stats == nil {
		return m.fillEmpty("no stats")
	}

	rows := m.data.Stats.Items()
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Section != rows[j].Section {
			return rows[i].Section < rows[j].Section
		}
		return rows[i].Name < rows[j].Name
	})

	var lines []string
	lastSection := ""
	for _, r := range rows {
		if r.Section != lastSection {
			if lastSection != "" {
				lines = append(lines, "")
			}
			lines = append(lines, styles.AccentText.Bold(true).Render(r.Section))
			lastSection = r.Section
		}
		lines = append(lines, fmt.Sprintf("  %s %s",
			styles.MutedText.Render(pad(r.Name, 32)),
			styles.Text.Render(fmt.Sprintf("%d", r.Value))))
	}
	return m.renderScrollable(lines, "no stats reported yet")
}

// renderErrors shows the rolling validation log, newest last.
func (m Model) renderErrors() string {
	styles := m.theme.Styles()
	if m.validator == nil {
		return m.fillEmpty("no errors")
	}

	entries := m.validator.Log().Entries()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines,
			styles.MutedText.Render(e.Time.Format("15:04:05"))+"  "+
				styles.WarningText.Render(pad(e.Source, 10))+"  "+
				styles.Text.Render(truncate(e.Message, m.width-24)))
	}
	if evicted := m.validator.Log().Evicted(); evicted > 0 {
		lines = append([]string{
			styles.FaintText.Render(fmt.Sprintf("(%d older entries discarded)", evicted)),
		}, lines...)
	}
	return m.renderScrollable(lines, "no errors recorded")
}

// renderScrollable clamps the view's scroll offset against the line count and
// pads the result to the content height.
func (m Model) renderScrollable(lines []string, emptyText string) string {
	rows := m.contentHeight()
	if len(lines) == 0 {
		return m.fillEmpty(emptyText)
	}

	offset := m.listScroll[m.currentView]
	max := len(lines) - rows
	if max < 0 {
		max = 0
	}
	if offset > max {
		offset = max
	}
	end := offset + rows
	if end > len(lines) {
		end = len(lines)
	}

	visible := append([]string(nil), lines[offset:end]...)
	for len(visible) < rows {
		visible = append(visible, "")
	}
	return strings.Join(visible, "\n")
}

func (m Model) fillEmpty(text string) string {
	styles := m.theme.Styles()
	lines := make([]string, m.contentHeight())
	if len(lines) > 0 {
		lines[0] = styles.FaintText.Render(text)
	}
	return strings.Join(lines, "\n")
}

// progressBar renders a fixed-width percent bar.
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := width * percent / 100
	return fmt.Sprintf("[%s%s] %3d%%",
		strings.Repeat("█", filled),
		strings.Repeat("░", width-filled),
		percent)
}

// pad right-pads s with spaces to width, truncating if longer.
func pad(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
