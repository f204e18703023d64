package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	// Brand colors
	Primary   = lipgloss.Color("#7D56F4") // Purple - brand color
	Secondary = lipgloss.Color("#00D4AA") // Cyan/Teal

	// Severity colors
	Critical = lipgloss.Color("#FF0000") // Bright red
	High     = lipgloss.Color("#FF6B6B") // Red/Orange
	Medium   = lipgloss.Color("#FFD93D") // Yellow
	Low      = lipgloss.Color("#6BCB77") // Green
	Info     = lipgloss.Color("#4D96FF") // Blue

	// Status colors
	Success = lipgloss.Color("#00D26A") // Bright green
	Warning = lipgloss.Color("#FFB800") // Amber
	Error   = lipgloss.Color("#FF3838") // Red
	Muted   = lipgloss.Color("#6B7280") // Gray

	// HTTP status code colors
	Status2xx = lipgloss.Color("#00D26A")
	Status3xx = lipgloss.Color("#4D96FF")
	Status4xx = lipgloss.Color("#FFD93D")
	Status5xx = lipgloss.Color("#FF3838")
)

// Pre-configured styles
var (
	BannerStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	VersionStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	SectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true).
			MarginTop(1)

	ConfigLabelStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Width(15)

	ConfigValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA"))

	StatLabelStyle = lipgloss.NewStyle().
			Foreground(Muted)

	StatValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	// Bracketed metadata (nuclei-style)
	BracketStyle = lipgloss.NewStyle().
			Foreground(Muted)

	PassStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	FailStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarnStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	URLStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Underline(true)

	// Category badge
	CategoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#3B3B4F")).
			Padding(0, 1)
)

// SeverityStyle returns the appropriate style for a severity level.
func SeverityStyle(severity string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch severity {
	case "critical":
		return base.Foreground(Critical)
	case "high":
		return base.Foreground(High)
	case "medium":
		return base.Foreground(Medium)
	case "low":
		return base.Foreground(Low)
	case "info":
		return base.Foreground(Info)
	default:
		return base.Foreground(Muted)
	}
}

// StatusCodeStyle returns the appropriate style for HTTP status codes.
func StatusCodeStyle(code int) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch {
	case code >= 200 && code < 300:
		return base.Foreground(Status2xx)
	case code >= 300 && code < 400:
		return base.Foreground(Status3xx)
	case code >= 400 && code < 500:
		return base.Foreground(Status4xx)
	case code >= 500:
		return base.Foreground(Status5xx)
	default:
		return base.Foreground(Muted)
	}
}
