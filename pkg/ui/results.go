package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/waftester/mutaprobe/pkg/finding"
	"github.com/waftester/mutaprobe/pkg/probe"
)

// FindingLine renders one finding on a single line:
// [severity] [plugin] url [variable] [signal]
func FindingLine(f finding.Finding) string {
	parts := []BracketPart{
		SeverityBracket(f.Severity.String()),
		CategoryBracket(f.Plugin),
	}
	line := Bracketed(parts...) + " " + URLStyle.Render(f.URL)

	var extra []BracketPart
	if f.Variable != "" {
		extra = append(extra, MutedBracket(f.Variable))
	}
	if f.Evidence != "" {
		extra = append(extra, MutedBracket(f.Evidence))
	}
	if len(extra) > 0 {
		line += " " + Bracketed(extra...)
	}
	return line
}

// PrintFinding prints one finding unless silent.
func PrintFinding(f finding.Finding) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(out(), FindingLine(f))
}

// PrintFindings prints findings ordered by severity, highest first.
func PrintFindings(findings []finding.Finding) {
	for _, f := range BySeverity(findings) {
		PrintFinding(f)
	}
}

// BySeverity returns a copy of findings ordered by severity, highest
// first. Equal severities keep their order.
func BySeverity(findings []finding.Finding) []finding.Finding {
	sorted := make([]finding.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Score() > sorted[j].Severity.Score()
	})
	return sorted
}

// StatsLine summarizes a dispatcher round.
func StatsLine(s probe.Stats) string {
	fields := []string{
		fmt.Sprintf("%s %s", StatLabelStyle.Render("total"), StatValueStyle.Render(fmt.Sprint(s.Total))),
		fmt.Sprintf("%s %s", StatLabelStyle.Render("sent"), StatValueStyle.Render(fmt.Sprint(s.Sent))),
		fmt.Sprintf("%s %s", StatLabelStyle.Render("failed"), StatValueStyle.Render(fmt.Sprint(s.Failed))),
	}
	if s.Skipped > 0 {
		fields = append(fields, fmt.Sprintf("%s %s", StatLabelStyle.Render("skipped"), StatValueStyle.Render(fmt.Sprint(s.Skipped))))
	}
	if s.Canceled > 0 {
		fields = append(fields, fmt.Sprintf("%s %s", StatLabelStyle.Render("canceled"), StatValueStyle.Render(fmt.Sprint(s.Canceled))))
	}
	fields = append(fields, fmt.Sprintf("%s %s", StatLabelStyle.Render("time"), StatValueStyle.Render(s.Duration.Round(1e6).String())))
	return strings.Join(fields, "  ")
}

// PrintStats prints StatsLine unless silent.
func PrintStats(s probe.Stats) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(out(), "  "+StatsLine(s))
}
