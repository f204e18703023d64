// Package ui renders console output for the CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/waftester/mutaprobe/pkg/defaults"
)

// Global UI state
var (
	silentMode  bool
	noColorMode bool
	output      io.Writer = os.Stderr
	uiMu        sync.RWMutex
)

// SetSilent enables or disables silent mode (suppresses most output)
func SetSilent(silent bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	silentMode = silent
}

// IsSilent returns whether silent mode is enabled
func IsSilent() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return silentMode
}

// SetNoColor disables colored output
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor returns whether color is disabled
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

// SetOutput redirects console output, stderr by default.
func SetOutput(w io.Writer) {
	uiMu.Lock()
	defer uiMu.Unlock()
	output = w
}

func out() io.Writer {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return output
}

const bannerArt = `
                 _                         _
 _ __ ___  _   _| |_ __ _ _ __  _ __ ___ | |__   ___
| '_ ` + "`" + ` _ \| | | | __/ _` + "`" + ` | '_ \| '__/ _ \| '_ \ / _ \
| | | | | | |_| | || (_| | |_) | | | (_) | |_) |  __/
|_| |_| |_|\__,_|\__\__,_| .__/|_|  \___/|_.__/ \___|
                         |_|
`

// PrintBanner prints the application banner with version info.
func PrintBanner() {
	if IsSilent() {
		return
	}
	w := out()
	for _, line := range strings.Split(bannerArt, "\n") {
		if line != "" {
			fmt.Fprintln(w, BannerStyle.Render(line))
		}
	}
	fmt.Fprintf(w, "%s %s\n\n", StatLabelStyle.Render("version"), VersionStyle.Render(defaults.Version))
}

// PrintSection prints a section header.
func PrintSection(title string) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(out(), SectionStyle.Render(title))
}

// PrintConfigLine prints one label/value pair.
func PrintConfigLine(key, value string) {
	if IsSilent() {
		return
	}
	fmt.Fprintf(out(), "  %s %s\n", ConfigLabelStyle.Render(key), ConfigValueStyle.Render(value))
}

// BracketPart represents a piece of bracketed output
type BracketPart struct {
	Text  string
	Style lipgloss.Style
}

// Bracketed renders nuclei-style bracketed information
// Example: [medium] [global_redirect] https://example.com
func Bracketed(parts ...BracketPart) string {
	var b strings.Builder
	for i, part := range parts {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(BracketStyle.Render("["))
		b.WriteString(part.Style.Render(part.Text))
		b.WriteString(BracketStyle.Render("]"))
	}
	return b.String()
}

// SeverityBracket colors a severity label.
func SeverityBracket(severity string) BracketPart {
	return BracketPart{Text: strings.ToLower(severity), Style: SeverityStyle(strings.ToLower(severity))}
}

// CategoryBracket renders a category badge.
func CategoryBracket(category string) BracketPart {
	return BracketPart{Text: category, Style: CategoryStyle}
}

// MutedBracket renders secondary information.
func MutedBracket(text string) BracketPart {
	return BracketPart{Text: text, Style: StatLabelStyle}
}

// PrintSuccess prints a success message (to stderr)
func PrintSuccess(message string) {
	fmt.Fprintln(out(), PassStyle.Render("  [+] "+message))
}

// PrintError prints an error message (to stderr)
func PrintError(message string) {
	fmt.Fprintln(out(), FailStyle.Render("  [X] "+message))
}

// PrintWarning prints a warning message (to stderr)
func PrintWarning(message string) {
	fmt.Fprintln(out(), WarnStyle.Render("  [!] "+message))
}

// PrintHelp prints contextual help
func PrintHelp(text string) {
	fmt.Fprintln(out(), HelpStyle.Render("  [i] "+text))
}
