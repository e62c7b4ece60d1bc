package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary = lipgloss.Color("#DE5833")
	Green   = lipgloss.Color("#10B981")
	Red     = lipgloss.Color("#EF4444")
	Yellow  = lipgloss.Color("#F59E0B")
	Gray    = lipgloss.Color("#6B7280")
	White   = lipgloss.Color("#FFFFFF")

	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	// Muted progress/detail lines
	MutedStyle = lipgloss.NewStyle().
			Foreground(Gray)

	// Minted alias display
	AddressStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(White).
			Background(Primary).
			Padding(0, 1)

	// Success box around final results
	SuccessBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	SuccessTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Green)

	WarnStyle = lipgloss.NewStyle().Bold(true).Foreground(Yellow)
	FailStyle = lipgloss.NewStyle().Bold(true).Foreground(Red)

	// Label style for key-value displays
	LabelStyle = lipgloss.NewStyle().Foreground(Gray).Width(12)
)

// Success renders a checked success line.
func Success(msg string) string {
	return SuccessTitleStyle.Render("✓ " + msg)
}

// Fail renders a crossed failure line.
func Fail(msg string) string {
	return FailStyle.Render("✗ " + msg)
}

// Info renders a muted detail line.
func Info(msg string) string {
	return MutedStyle.Render("• " + msg)
}
