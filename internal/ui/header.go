package ui

import (
	"fmt"
	"strings"
	"time"
)

// headerCategories are the categories summarized in the status bar, in
// display order.
var headerCategories = []string{
	"channels", "events", "commands", "logs", "uploads", "downloads", "stats",
}

// renderHeader renders the status bar: link health, dropped counts, the
// event severity tally and per-category activity dots.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	var parts []string
	parts = append(parts, bg.Render("kestrel", styles.Logo))

	if m.lastData.IsZero() {
		parts = append(parts, bg.Render("Waiting for telemetry...", styles.WarningText.Bold(true)))
		return styles.Header.Width(m.width).Render(bg.Join(parts, sep))
	}

	// Link state: behind if any category's round trips exceed its cadence.
	var dropped int64
	behind := false
	for _, name := range headerCategories {
		if m.validator == nil {
			break
		}
		h := m.validator.Health(name)
		dropped += h.Dropped
		if h.FallingBehind {
			behind = true
		}
	}
	if behind {
		parts = append(parts, bg.Render("● LAGGING", styles.WarningText.Bold(true)))
	} else {
		parts = append(parts, bg.Render("● LIVE", styles.SuccessText))
	}

	droppedStyle := styles.MutedText
	if dropped > 0 {
		droppedStyle = styles.DangerText
	}
	parts = append(parts,
		bg.Render("Dropped:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", dropped), droppedStyle))

	if m.severity != nil {
		warnHi := m.severity.Count("WARNING_HI")
		warnLo := m.severity.Count("WARNING_LO")
		fatal := m.severity.Count("FATAL")

		warnStyle := styles.MutedText
		if warnHi+warnLo > 0 {
			warnStyle = styles.WarningText
		}
		fatalStyle := styles.MutedText
		if fatal > 0 {
			fatalStyle = styles.DangerText
		}
		parts = append(parts,
			bg.Render("Warn:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d/%d", warnHi, warnLo), warnStyle))
		parts = append(parts,
			bg.Render("Fatal:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", fatal), fatalStyle))
	}

	if dots := m.renderActivityDots(bg); dots != "" {
		parts = append(parts, dots)
	}

	if ts := m.formatTimestamp(); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, sep))
}

// renderActivityDots shows one dot per category, lit while data is flowing.
func (m Model) renderActivityDots(bg BgStyle) string {
	if m.data == nil {
		return ""
	}
	styles := m.theme.Styles().WithBackground(m.theme.Surface)

	active := map[string]bool{}
	if m.data.Channels != nil {
		active["channels"] = m.data.Channels.Active()
	}
	if m.data.Events != nil {
		active["events"] = m.data.Events.Active()
	}
	if m.data.Commands != nil {
		active["commands"] = m.data.Commands.Active()
	}
	if m.data.Logs != nil {
		active["logs"] = m.data.Logs.Active()
	}
	if m.data.Uploads != nil {
		active["uploads"] = m.data.Uploads.Active()
	}
	if m.data.Downloads != nil {
		active["downloads"] = m.data.Downloads.Active()
	}
	if m.data.Stats != nil {
		active["stats"] = m.data.Stats.Active()
	}

	dots := make([]string, 0, len(headerCategories))
	for _, name := range headerCategories {
		if active[name] {
			dots = append(dots, bg.Render("●", styles.SuccessText))
		} else {
			dots = append(dots, bg.Render("·", styles.FaintText))
		}
	}
	return strings.Join(dots, "")
}

// formatTimestamp formats the last data arrival with a relative indicator.
func (m Model) formatTimestamp() string {
	if m.lastData.IsZero() {
		return ""
	}
	since := time.Since(m.lastData)
	out := m.lastData.Format("15:04:05")
	if since < time.Minute {
		out += " (now)"
	} else if since < time.Hour {
		out += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	} else if since < 24*time.Hour {
		out += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return out
}

// renderTabBar renders the view tabs plus contextual key hints.
func (m Model) renderTabBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(viewOrder)+4)
	for _, v := range viewOrder {
		label := v.title()
		if v == m.currentView {
			segments = append(segments, bg.Render(label, styles.AccentText.Bold(true).Underline(true)))
		} else {
			segments = append(segments, bg.Render(label, styles.MutedText))
		}
	}

	if m.currentView == ViewEvents {
		st := m.events.State()
		mode := "parked"
		if st.Locked {
			mode = "locked"
		} else if st.Following {
			mode = "following"
		}
		segments = append(segments, bg.Render(mode, styles.FaintText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+bg.Render(":", styles.FaintText)+
			bg.Render(m.theme.Name, styles.FaintText))
	segments = append(segments,
		bg.Render("?", styles.AccentText)+bg.Render(":", styles.FaintText)+
			bg.Render("Help", styles.FaintText))

	return styles.Header.Width(m.width).Render(bg.Join(segments, sep))
}

// renderCommandBar renders the bottom hint line for the active view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type hint struct{ key, desc string }
	var hints []hint

	switch m.currentView {
	case ViewEvents:
		hints = []hint{
			{"j/k", "Scroll"},
			{"g/G", "First/Last"},
			{"f", "Follow"},
			{"L", "Lock"},
			{"tab", "Next view"},
		}
	case ViewLogs:
		if m.viewingLog {
			hints = []hint{
				{"j/k", "Scroll"},
				{"Bksp", "Log list"},
				{"tab", "Next view"},
			}
		} else {
			hints = []hint{
				{"j/k", "Select"},
				{"Enter", "Open log"},
				{"tab", "Next view"},
			}
		}
	default:
		hints = []hint{
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
			{"tab", "Next view"},
		}
	}
	hints = append(hints, hint{"Q", "Quit"})

	segments := make([]string, 0, len(hints))
	for _, h := range hints {
		segments = append(segments,
			bg.Render(h.key, styles.AccentText)+bg.Render(":", styles.FaintText)+
				bg.Render(h.desc, styles.MutedText))
	}
	return styles.Header.Width(m.width).Render(bg.Join(segments, bg.Spaces(2)))
}

// renderHelp renders the full-screen help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	lines := []string{
		styles.Logo.Render("kestrel") + styles.MutedText.Render("  ground system dashboard"),
		"",
		styles.AccentText.Render("Views"),
		"  c  Channels      e  Events       m  Commands",
		"  t  Transfers     l  Logs         s  Stats       x  Errors",
		"  tab/shift+tab    cycle views",
		"",
		styles.AccentText.Render("Events"),
		"  j/k           scroll one line (stops following)",
		"  PgUp/PgDn     scroll a step",
		"  g / G         jump to first / last (G resumes following)",
		"  f             follow the tail",
		"  L             lock to the tail (ignores scrolling)",
		"",
		styles.AccentText.Render("Logs"),
		"  Enter         open the selected server log",
		"  Backspace     back to the log list",
		"",
		styles.AccentText.Render("General"),
		"  T             cycle theme",
		"  Q / ctrl+c    quit",
		"",
		styles.MutedText.Render("press any key to close"),
	}
	return strings.Join(lines, "\n")
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
