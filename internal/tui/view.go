package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/noah-isme/streetvoice-api/internal/models"
	"github.com/noah-isme/streetvoice-api/pkg/client"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")).Bold(true)
	cursorStyle  = lipgloss.NewStyle().Bold(true)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
)

// View renders the current screen.
func (a *App) View() string {
	var body string
	switch a.screen {
	case screenLogin:
		body = a.viewLogin()
	case screenAdvice:
		body = a.viewAdvice()
	case screenStats:
		body = a.viewStats()
	default:
		body = a.viewReports()
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("StreetVoice moderation"), body, a.viewStatusLine())
}

func (a *App) viewLogin() string {
	form := lipgloss.JoinVertical(lipgloss.Left,
		"Email    "+a.email.View(),
		"Password "+a.password.View(),
		"",
		mutedStyle.Render("tab switch field · enter sign in · ctrl+c quit"),
	)
	return boxStyle.Render(form)
}

func (a *App) viewReports() string {
	var b strings.Builder
	active, pending := a.feed.Active(), a.feed.Pending()
	b.WriteString("Filters  " + describeFilters(active))
	if pending != active {
		b.WriteString(pendingStyle.Render("  (pending: " + describeFilters(pending) + ", enter to apply)"))
	}
	b.WriteString("\n")
	if a.searching {
		b.WriteString("Search   " + a.search.View() + "\n")
	}
	b.WriteString("\n")

	rows := a.feed.Rows()
	switch {
	case len(rows) == 0 && a.feed.Loading():
		b.WriteString(mutedStyle.Render("Loading reports..."))
	case len(rows) == 0:
		b.WriteString(mutedStyle.Render("No reports match the filters."))
	default:
		width := max(40, a.width-2)
		for i, row := range rows {
			b.WriteString(a.renderRow(i, row, width))
			b.WriteString("\n")
		}
	}

	footer := fmt.Sprintf("page %d · %d loaded", a.feed.Page(), len(rows))
	if a.feed.HasMore() {
		footer += " · n for more"
	}
	b.WriteString("\n" + mutedStyle.Render(footer) + "\n")
	b.WriteString(a.help.ShortHelpView(a.keys.reportHelp()))
	return b.String()
}

func (a *App) renderRow(i int, row models.Report, width int) string {
	state, shown := a.mod.State(row.ID)
	status := shown.Label()
	switch state {
	case client.RowPending:
		status = pendingStyle.Render(status + " *")
	case client.RowSaving:
		status = pendingStyle.Render(status + " (saving)")
	}
	marker := "  "
	if i == a.cursor {
		marker = cursorStyle.Render("> ")
	}
	loading := ""
	if a.advisor.Loading(row.ID) {
		loading = mutedStyle.Render(" [fetching advice]")
	}
	line := fmt.Sprintf("%s%-12s %-11s %-16s %s  %s%s",
		marker,
		row.ID,
		row.Tag,
		status,
		row.ReportedAt.Format("2006-01-02"),
		row.Location,
		loading,
	)
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}

func (a *App) viewAdvice() string {
	header := fmt.Sprintf("Suggestion for %s", a.adviceFor)
	return lipgloss.JoinVertical(lipgloss.Left,
		cursorStyle.Render(header),
		boxStyle.Render(a.advice.View()),
		mutedStyle.Render("↑/↓ scroll · esc back"),
	)
}

func (a *App) viewStats() string {
	s := a.stats
	if s == nil {
		return mutedStyle.Render("No statistics loaded.")
	}
	lines := []string{
		fmt.Sprintf("Total reports   %d", s.Total),
		fmt.Sprintf("New today       %d", s.NewToday),
		fmt.Sprintf("%-15s %d", models.StatusSubmitted.Label(), s.Submitted),
		fmt.Sprintf("%-15s %d", models.StatusInProgress.Label(), s.InProgress),
		fmt.Sprintf("%-15s %d", models.StatusResolved.Label(), s.Resolved),
		"",
		cursorStyle.Render("By category"),
	}
	tags := make([]string, 0, len(s.ByTag))
	for tag := range s.ByTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		lines = append(lines, fmt.Sprintf("  %-13s %d", tag, s.ByTag[tag]))
	}
	if len(s.ByZone) > 0 {
		lines = append(lines, "", cursorStyle.Render("Top locations"))
		for _, zone := range s.ByZone {
			lines = append(lines, fmt.Sprintf("  %-30s %d", zone.Zone, zone.Count))
		}
	}
	lines = append(lines, "", mutedStyle.Render("esc back"))
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) viewStatusLine() string {
	switch {
	case a.err != "":
		return errorStyle.Render(a.err)
	case a.status != "":
		return okStyle.Render(a.status)
	default:
		return ""
	}
}
