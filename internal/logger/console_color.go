package logger

import (
	"fmt"

	"github.com/fatih/color"
)

// colorScheme defines consistent colors for summary lines.
// Green: kept values and success
// Red: replaced values and errors
// Yellow: warnings
// Cyan: labels and category names
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	value   *color.Color
}

func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
}

// formatColorizedMetric formats "label: value" with a cyan label
func formatColorizedMetric(label string, value interface{}, scheme *colorScheme) string {
	return fmt.Sprintf("%s: %s", scheme.label.Sprint(label), scheme.value.Sprintf("%v", value))
}

// formatColorizedCount colours a non-zero count with c and leaves zero plain
func formatColorizedCount(label string, n int, c *color.Color, scheme *colorScheme) string {
	if n == 0 {
		return formatColorizedMetric(label, n, scheme)
	}
	return fmt.Sprintf("%s: %s", scheme.label.Sprint(label), c.Sprintf("%d", n))
}
