package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// ProgressIndicator prints the steps of a multi-step command
type ProgressIndicator struct {
	writer  io.Writer
	title   string
	total   int
	current int
}

// NewProgressIndicator creates a new progress indicator
func NewProgressIndicator(w io.Writer, title string, total int) *ProgressIndicator {
	return &ProgressIndicator{
		writer: w,
		title:  title,
		total:  total,
	}
}

// Start displays the header message
func (p *ProgressIndicator) Start() {
	fmt.Fprintf(p.writer, "%s:\n", p.title)
}

// Step displays progress for current step: [N/Total] label (cyan)
func (p *ProgressIndicator) Step(label string) {
	p.current++
	fmt.Fprintln(p.writer, color.New(color.FgCyan).Sprintf("  [%d/%d] %s", p.current, p.total, label))
}

// Complete displays success message with green checkmark
func (p *ProgressIndicator) Complete(message string) {
	fmt.Fprintf(p.writer, "%s %s\n", color.New(color.FgGreen).Sprint("✓"), message)
}

// Fail displays a failure message with a red cross
func (p *ProgressIndicator) Fail(message string) {
	fmt.Fprintf(p.writer, "%s %s\n", color.New(color.FgRed).Sprint("✗"), message)
}
