package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/ByLCY/textfill/fit"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleName    = lipgloss.NewStyle().Foreground(colorGray).Width(16)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconArrow   = "→"
)

// printSummary prints one line per outcome followed by totals.
func printSummary(w io.Writer, title string, report *fit.Report) {
	fmt.Fprintln(w, styleTitle.Render(title))
	for _, o := range report.Outcomes {
		printOutcome(w, o)
	}
	line := fmt.Sprintf("%d fitted", report.Succeeded())
	if n := report.Failed(); n > 0 {
		line += styleDim.Render(" · ") + styleWarning.Render(fmt.Sprintf("%d failed", n))
	}
	fmt.Fprintln(w, "  "+styleDim.Render(line))
}

func printOutcome(w io.Writer, o fit.Outcome) {
	if !o.OK() {
		fmt.Fprintln(w, styleIconError.Render(iconError)+" "+styleName.Render(o.Name)+" "+styleWarning.Render(o.Error))
		return
	}
	sizes := fmt.Sprintf("%gpx %s %s", o.OldSize, iconArrow, styleNumber.Render(fmt.Sprintf("%dpx", o.Size)))
	detail := fmt.Sprintf("width %d", o.WidthSize)
	if o.HeightSize > 0 {
		detail = fmt.Sprintf("height %d · %s", o.HeightSize, detail)
	}
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+styleName.Render(o.Name)+" "+sizes+"  "+styleDim.Render(detail))
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+styleDim.Render(iconArrow)+" "+styleValue.Render(path))
}
