package annotations

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
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

	// Auto-detect color support
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && !color.NoColor
	}

	return &OutputFormatter{
		useColor: useColor,
		writer:   w,
	}
}

// Handle implements the Handler interface - prints events as they occur
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
	case TableCreated:
		return fmt.Sprintf("%s %s Table created (chunk %s, max chunk %s)",
			latency,
			f.colorize("===", color.FgGreen),
			humanize.IBytes(uint64(intData(event, "arena.chunk-size"))),
			humanize.IBytes(uint64(intData(event, "arena.max-chunk-size"))))

	case InternInserted:
		return fmt.Sprintf("%s Interned %s as %s (%s)",
			latency,
			f.colorize(truncateValue(stringData(event, "value")), color.FgCyan),
			f.colorize(fmt.Sprintf("#%d", intData(event, "symbol")), color.FgBlue),
			f.colorizeCount("symbols", intData(event, "symbols.count")))

	case ArenaChunkAllocated:
		return fmt.Sprintf("%s %s Arena grew to %s (%s reserved, %s used)",
			latency,
			f.colorize("+", color.FgYellow),
			f.colorizeCount("chunks", intData(event, "chunk.count")),
			humanize.IBytes(uint64(intData(event, "arena.reserved"))),
			humanize.IBytes(uint64(intData(event, "arena.used"))))

	case LoadBegin:
		return fmt.Sprintf("%s %s Loading %s on %d workers",
			latency,
			f.colorize("===", color.FgYellow),
			f.colorizeCount("words", intData(event, "words.count")),
			intData(event, "workers"))

	case LoadComplete:
		return fmt.Sprintf("%s %s Load done with %s from %s",
			latency,
			f.colorize("===", color.FgGreen),
			f.colorizeCount("symbols", intData(event, "symbols.count")),
			f.colorizeCount("interns", intData(event, "interns.total")))

	case LoadVerified:
		if ok, _ := event.Data["success"].(bool); !ok {
			return fmt.Sprintf("%s %s Verification failed: %v",
				latency,
				f.colorize("✗", color.FgRed),
				event.Data["error"])
		}
		return fmt.Sprintf("%s %s Verified %s",
			latency,
			f.colorize("✓", color.FgGreen),
			f.colorizeCount("words", intData(event, "words.count")))

	default:
		// Generic format for unknown events
		return fmt.Sprintf("%s %s %v", latency, event.Name, event.Data)
	}
}

// formatLatency formats a duration as [XXXms] or [XXXµs] with color coding.
func (f *OutputFormatter) formatLatency(d time.Duration) string {
	// Use microseconds for sub-millisecond durations
	if d < time.Millisecond {
		s := fmt.Sprintf("[%dµs]", d.Microseconds())
		if !f.useColor {
			return s
		}
		return color.GreenString(s)
	}

	// Use floating-point milliseconds to preserve precision
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

// colorizeCount formats a count with a label, using color based on the label type.
func (f *OutputFormatter) colorizeCount(label string, count int64) string {
	text := fmt.Sprintf("%d %s", count, label)

	if !f.useColor {
		return text
	}

	switch label {
	case "symbols":
		return color.CyanString(text)
	case "chunks":
		return color.MagentaString(text)
	case "words", "interns":
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

// intData reads a numeric data field regardless of its integer width.
func intData(event Event, key string) int64 {
	switch v := event.Data[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	default:
		return 0
	}
}

func stringData(event Event, key string) string {
	s, _ := event.Data[key].(string)
	return s
}

// truncateValue quotes an interned value and shortens it for display.
func truncateValue(s string) string {
	const maxLen = 40
	if len(s) > maxLen {
		s = truncateRunes(s, maxLen-3) + "..."
	}
	return strconv.Quote(s)
}

// truncateRunes cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
