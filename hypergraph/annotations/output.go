package annotations

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// OutputFormatter formats events for human-readable display.
type OutputFormatter struct {
	useColor bool
	writer   io.Writer
}

// NewOutputFormatter creates a formatter with color support detection.
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	if w == nil {
		w = os.Stdout
	}

	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isTerminal(f.Fd())
	}

	return &OutputFormatter{
		useColor: useColor,
		writer:   w,
	}
}

// Handle implements the Handler interface - prints events as they occur.
func (f *OutputFormatter) Handle(event Event) {
	output := f.Format(event)
	if output != "" {
		fmt.Fprintln(f.writer, output)
	}
}

// Format converts an event to a human-readable string.
func (f *OutputFormatter) Format(event Event) string {
	latency := f.formatLatency(event.Latency)

	switch event.Name {
	case PlanInvoked:
		return fmt.Sprintf("%s Plan: %s", latency, truncatePattern(str(event.Data["pattern"])))

	case PlanCacheHit:
		return fmt.Sprintf("%s %s cached plan reused (epoch %v)",
			latency,
			f.colorize("≡", color.FgCyan),
			event.Data["epoch"])

	case PlanGraphBuilt:
		return fmt.Sprintf("%s Graph: %s, %s",
			latency,
			f.colorizeCount("vertices", intOf(event.Data["vertices"])),
			f.colorizeCount("edges", intOf(event.Data["edges"])))

	case ModelVariablesInit, ModelConstraintsInit:
		return fmt.Sprintf("%s %s: %v", latency, event.Name, event.Data["count"])

	case ModelObjectiveSet:
		return fmt.Sprintf("%s Objective updated at epoch %v", latency, event.Data["epoch"])

	case SolveBegin:
		return fmt.Sprintf("%s Solving (budget %v)", latency, event.Data["budget"])

	case SolveCompleted:
		return fmt.Sprintf("%s %s Solve %v",
			latency,
			f.colorize("✓", color.FgGreen),
			event.Data["result"])

	case PlanDecoded:
		return fmt.Sprintf("%s Plan: %s, order %v",
			latency,
			f.colorizeCount("roots", intOf(event.Data["roots"])),
			event.Data["order"])

	case ErrorGraphConstruction, ErrorInfeasible, ErrorSolver:
		return fmt.Sprintf("%s %s %s: %v",
			latency,
			f.colorize("✗", color.FgRed),
			event.Name,
			event.Data["error"])

	default:
		// Generic format for unknown events
		return fmt.Sprintf("%s %s %v", latency, event.Name, event.Data)
	}
}

// formatLatency formats a duration as [XXXms] or [XXXµs] with color coding.
func (f *OutputFormatter) formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		s := fmt.Sprintf("[%dµs]", d.Microseconds())
		if !f.useColor {
			return s
		}
		return color.GreenString(s)
	}

	ms := float64(d.Microseconds()) / 1000.0
	s := fmt.Sprintf("[%.1fms]", ms)

	if !f.useColor {
		return s
	}

	switch {
	case ms < 50:
		return color.GreenString(s)
	case ms < 200:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

// colorizeCount formats a count with a label.
func (f *OutputFormatter) colorizeCount(label string, count int) string {
	text := fmt.Sprintf("%d %s", count, label)

	if !f.useColor {
		return text
	}

	switch strings.ToLower(label) {
	case "vertices":
		return color.CyanString(text)
	case "edges":
		return color.MagentaString(text)
	case "roots":
		return color.BlueString(text)
	default:
		return text
	}
}

// colorize applies color if enabled.
func (f *OutputFormatter) colorize(text string, attrs ...color.Attribute) string {
	if !f.useColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

// truncatePattern shortens long pattern text for display.
func truncatePattern(s string) string {
	s = strings.Join(strings.Fields(s), " ")

	const maxLen = 80
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func intOf(v interface{}) int {
	if n, ok := v.(int); ok {
		return n
	}
	return 0
}

// ConsoleHandler creates a handler that prints formatted events to stderr.
func ConsoleHandler() Handler {
	formatter := NewOutputFormatter(os.Stderr)
	return formatter.Handle
}

// isTerminal checks if the file descriptor is a terminal.
// This is a simplified version - in production you'd use a proper terminal detection library.
func isTerminal(fd uintptr) bool {
	return fd == uintptr(1) || fd == uintptr(2) // stdout or stderr
}
