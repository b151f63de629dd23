// Package render draws parsed rows as a terminal table. It implements
// the tail.Sink interface for live watching and renders one-shot search
// results as a full table.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"tailsv/internal/record"
	"tailsv/internal/tail"
)

const (
	DefaultMaxColumnWidth = 40
	columnGap             = 2
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	infoStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// TableSink streams records to a writer as padded table lines. Column
// widths are set by the header (or the first row when headerless) and
// grow as wider values appear; already printed lines are not redrawn.
type TableSink struct {
	mu             sync.Mutex
	out            io.Writer
	maxColumnWidth int
	widths         []int
	wroteHeader    bool
}

func NewTableSink(out io.Writer, maxColumnWidth int) *TableSink {
	if maxColumnWidth <= 0 {
		maxColumnWidth = DefaultMaxColumnWidth
	}
	return &TableSink{out: out, maxColumnWidth: maxColumnWidth}
}

func (t *TableSink) OnHeader(fields []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.growWidths(fields)
	fmt.Fprintln(t.out, headerStyle.Render(t.formatCells(fields)))
	fmt.Fprintln(t.out, headerStyle.Render(t.separator()))
	t.wroteHeader = true
}

func (t *TableSink) OnRecord(row record.Row) {
	t.mu.Lock()
	defer t.mu.Unlock()

	values := row.Values()
	t.growWidths(values)
	fmt.Fprintln(t.out, t.formatCells(values))
}

func (t *TableSink) OnInfo(info tail.Info) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var message string
	switch info.Kind {
	case tail.InfoShrink:
		message = fmt.Sprintf("-- file truncated or replaced (now %d bytes), restarting --", info.Size)
	case tail.InfoRemoved:
		message = "-- file removed, watch ended --"
	default:
		message = fmt.Sprintf("-- %s --", info.Kind)
	}
	fmt.Fprintln(t.out, infoStyle.Render(message))
}

func (t *TableSink) OnError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintln(t.out, errorStyle.Render("!! "+err.Error()))
}

func (t *TableSink) growWidths(cells []string) {
	for index, cell := range cells {
		width := min(len([]rune(cell)), t.maxColumnWidth)
		if index >= len(t.widths) {
			t.widths = append(t.widths, width)
			continue
		}
		if width > t.widths[index] {
			t.widths[index] = width
		}
	}
}

func (t *TableSink) formatCells(cells []string) string {
	parts := make([]string, len(cells))
	for index, cell := range cells {
		width := t.maxColumnWidth
		if index < len(t.widths) {
			width = t.widths[index]
		}
		parts[index] = pad(truncate(cell, width), width)
	}
	return strings.TrimRight(strings.Join(parts, strings.Repeat(" ", columnGap)), " ")
}

func (t *TableSink) separator() string {
	parts := make([]string, len(t.widths))
	for index, width := range t.widths {
		parts[index] = strings.Repeat("-", width)
	}
	return strings.Join(parts, strings.Repeat(" ", columnGap))
}

// Table renders a complete result set at once, sizing every column to
// its widest value. Used by the one-shot search output.
func Table(header []string, rows []record.Row, maxColumnWidth int) string {
	sink := NewTableSink(io.Discard, maxColumnWidth)
	sink.growWidths(header)
	for _, row := range rows {
		sink.growWidths(row.Values())
	}

	var builder strings.Builder
	if len(header) > 0 {
		builder.WriteString(headerStyle.Render(sink.formatCells(header)))
		builder.WriteByte('\n')
		builder.WriteString(headerStyle.Render(sink.separator()))
		builder.WriteByte('\n')
	}
	for _, row := range rows {
		builder.WriteString(sink.formatCells(row.Values()))
		builder.WriteByte('\n')
	}
	return builder.String()
}

func truncate(value string, width int) string {
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	if width <= 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

func pad(value string, width int) string {
	gap := width - len([]rune(value))
	if gap <= 0 {
		return value
	}
	return value + strings.Repeat(" ", gap)
}
