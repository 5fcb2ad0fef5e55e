package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/git-ranked/gitranked/pkg/github"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached = lipgloss.NewStyle().Foreground(colorGreen)
	styleFresh  = lipgloss.NewStyle().Foreground(colorGray)

	styleRank = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Leaderboard Table
// =============================================================================

// sortColumn names the metric column for the active sort.
func sortColumn(sortBy github.Sort) string {
	switch sortBy {
	case github.SortRepositories:
		return "Repos"
	case github.SortJoined:
		return "Joined"
	case github.SortContributions:
		return "Activity"
	default:
		return "Followers"
	}
}

func sortValue(u *github.User, sortBy github.Sort) string {
	switch sortBy {
	case github.SortRepositories:
		return strconv.Itoa(u.PublicRepos)
	case github.SortJoined:
		return u.CreatedAt.Format("Jan 2006")
	case github.SortContributions:
		if u.RecentActivity == nil {
			return "—"
		}
		return strconv.Itoa(*u.RecentActivity)
	default:
		return strconv.Itoa(u.Followers)
	}
}

// printLeaderboard renders one ranked page as a table. Ranks continue
// across pages.
func printLeaderboard(users []github.User, sortBy github.Sort, page, perPage int) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	firstRank := (page-1)*perPage + 1

	rows := make([][]string, len(users))
	for i := range users {
		u := &users[i]
		name := u.Name
		if name == "" {
			name = "—"
		}
		loc := u.Location
		if loc == "" {
			loc = "—"
		}
		rows[i] = []string{
			strconv.Itoa(firstRank + i),
			u.Login,
			name,
			sortValue(u, sortBy),
			loc,
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Login", "Name", sortColumn(sortBy), "Location").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return styleRank
			case col == 1:
				return StyleValue
			case col == 3:
				return lipgloss.NewStyle().Foreground(colorCyan)
			default:
				return StyleDim
			}
		})

	fmt.Println(t.Render())
}

// printResultStats prints the result-set summary line under the table.
func printResultStats(total, shown int, cached, hasNext bool) {
	status := iconFresh
	statusStyle := styleFresh
	if cached {
		status = iconCached
		statusStyle = styleCached
	}

	line := "  " + StyleDim.Render(fmt.Sprintf("%d matching developers", total))
	line += StyleDim.Render(" · ") + StyleDim.Render(fmt.Sprintf("showing %d", shown))
	line += StyleDim.Render(" · ") + statusStyle.Render(status)
	if hasNext {
		line += StyleDim.Render(" · more pages available")
	}
	fmt.Println(line)
}

// printRateLimited explains a denied or exhausted request.
func printRateLimited(resetAt *time.Time) {
	printWarning("Rate limit reached")
	if resetAt != nil && !resetAt.IsZero() {
		printDetail("Resets %s", resetAt.Local().Format(time.Kitchen))
	}
	printDetail("Add a GitHub token (--token or GITHUB_TOKEN) for a larger quota")
}
