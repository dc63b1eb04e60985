package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/apiwatchdog/internal/logtail"
	"github.com/five82/apiwatchdog/internal/provider"
)

const (
	labelWidth   = 12
	headerHeight = 1
	footerHeight = 1
	statusHeight = 4
)

func (m Model) renderForm() string {
	styles := m.theme.Styles()
	req := m.request()

	rows := []string{
		m.renderField(fieldProvider, "Provider", m.renderChoices(styles)),
		m.renderField(fieldInterval, "Interval", "‹ "+intervalLabel(req.Interval)+" ›"),
		m.renderField(fieldQuery, titleFor(m.kind), m.query.View()),
		m.renderField(fieldLogFile, "Log file", m.logFile.View()),
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("API Watchdog"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 40)))
	b.WriteString("\n\n")
	b.WriteString(strings.Join(rows, "\n"))
	b.WriteString("\n\n")
	if m.formErr != nil {
		b.WriteString(styles.DangerText.Render(m.formErr.Error()))
	} else {
		b.WriteString(styles.MutedText.Render("Press enter to start monitoring"))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(minInt(72, maxInt(40, m.width-4))).
		Render(b.String())

	body := lipgloss.Place(
		m.width,
		maxInt(1, m.height-headerHeight-footerHeight),
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader("form"),
		body,
		m.renderFooter([]string{"tab", "next field", "←/→", "choose", "enter", "start", "T", "theme", "esc", "quit"}),
	)
}

func (m Model) renderField(f field, label, value string) string {
	styles := m.theme.Styles()
	style := styles.Field
	labelStyle := styles.MutedText
	if m.focus == f {
		style = styles.FocusedField
		labelStyle = styles.AccentText.Bold(true)
	}
	return style.Render(labelStyle.Width(labelWidth).Render(label) + value)
}

func (m Model) renderChoices(styles Styles) string {
	parts := make([]string, 0, len(provider.Kinds))
	for _, k := range provider.Kinds {
		if k == m.kind {
			parts = append(parts, styles.SuccessText.Render("● "+k.Title()))
		} else {
			parts = append(parts, styles.FaintText.Render("○ "+k.Title()))
		}
	}
	return strings.Join(parts, "  ")
}

func titleFor(k provider.Kind) string {
	if k == provider.KindStock {
		return "Stock"
	}
	return "Location"
}

// renderHeader renders the status bar.
func (m Model) renderHeader(badge string) string {
	styles := m.theme.Styles().WithSurface(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("apiwatchdog", styles.Logo)}
	if m.session != nil {
		snap := m.snapshot
		parts = append(parts,
			styles.StateStyle(badge).Render(strings.ToUpper(badge)),
			bg.Render(strings.ToUpper(snap.Provider), styles.AccentText.Bold(true)),
			bg.Render(snap.Query, styles.Text),
		)
	} else {
		parts = append(parts, bg.Render(m.theme.Name, styles.FaintText))
	}
	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

func (m Model) renderFooter(pairs []string) string {
	styles := m.theme.Styles().WithSurface(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, bg.Render(pairs[i], styles.WarningText)+bg.Spaces(1)+bg.Render(pairs[i+1], styles.MutedText))
	}
	return styles.Footer.Width(m.width).Render(bg.Join(parts, "   "))
}

func (m Model) renderRunning() string {
	badge := m.pollState.String()
	if m.snapshot.IsOffline() {
		badge = "offline"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(badge),
		m.renderStatus(),
		m.logViewport.View(),
		m.renderFooter([]string{"x/esc", "stop", "↑/↓", "scroll", "T", "theme", "?", "help"}),
	)
}

// renderStatus renders the cycle counters under the header.
func (m Model) renderStatus() string {
	styles := m.theme.Styles()
	snap := m.snapshot
	now := time.Now()

	counts := fmt.Sprintf("cycles %d   failures in a row %d   interval %s",
		snap.Cycles, snap.ConsecutiveFailures, intervalLabel(m.request().Interval))
	times := fmt.Sprintf("last update %s   last success %s", ago(snap.LastUpdated, now), ago(snap.LastSuccess, now))

	lastErr := styles.SuccessText.Render("no errors")
	if snap.LastError != nil {
		lastErr = styles.DangerText.Render(truncate("last error: "+snap.LastError.Error(), maxInt(20, m.width-2)))
	}
	logPath := styles.FaintText.Render("log " + truncateMiddle(m.session.LogFile(), maxInt(20, m.width-6)))

	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join([]string{
		styles.Text.Render(counts),
		styles.MutedText.Render(times),
		lastErr,
		logPath,
	}, "\n"))
}

func (m *Model) resizeLogViewport() {
	h := maxInt(1, m.height-headerHeight-footerHeight-statusHeight)
	w := maxInt(1, m.width)
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(w, h)
		return
	}
	m.logViewport.Width = w
	m.logViewport.Height = h
}

// setLogContent styles records by level and keeps the view pinned to the
// newest line unless the user scrolled up.
func (m *Model) setLogContent(lines []string) {
	styles := m.theme.Styles()
	follow := m.logViewport.AtBottom() || m.logViewport.TotalLineCount() == 0

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(renderLogLine(styles, line, m.logViewport.Width))
	}
	if len(lines) == 0 {
		b.WriteString(styles.FaintText.Render("waiting for the first record..."))
	}
	m.logViewport.SetContent(b.String())
	if follow {
		m.logViewport.GotoBottom()
	}
}

func renderLogLine(styles Styles, line string, width int) string {
	rec, ok := logtail.Parse(line)
	if !ok {
		return styles.FaintText.Render(truncate(line, width))
	}
	prefix := rec.Time.Format("15:04:05")
	msg := truncate(rec.Message, maxInt(10, width-len(prefix)-len(rec.Level)-3))
	return styles.FaintText.Render(prefix) + " " +
		styles.LevelStyle(rec.Level).Render(rec.Level) + " " +
		styles.Text.Render(msg)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
