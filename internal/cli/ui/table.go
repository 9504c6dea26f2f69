package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// CellStyle picks the color of a single table cell. A nil result leaves the
// cell plain.
type CellStyle func(col int, value string) *color.Color

// TableOptions configures table behavior
type TableOptions struct {
	NoColor bool
	Style   CellStyle
}

// Table renders rows under a header line and a rule, with columns padded to
// their widest cell.
type Table struct {
	w       io.Writer
	headers []string
	rows    [][]string
	opts    TableOptions
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, headers []string, opts *TableOptions) *Table {
	t := &Table{w: w, headers: headers}
	if opts != nil {
		t.opts = *opts
	}
	return t
}

// AddRow adds a row. Cells beyond the header count are dropped.
func (t *Table) AddRow(cells ...string) {
	if len(cells) > len(t.headers) {
		cells = cells[:len(t.headers)]
	}
	t.rows = append(t.rows, cells)
}

// Render writes the table. A table without headers renders nothing.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := t.widths()
	head := t.color(color.Bold, color.FgCyan)
	rule := t.color(color.FgHiBlack)

	var line strings.Builder
	for i, h := range t.headers {
		cell(&line, head, h, widths[i]-len(h))
	}
	t.flush(&line)

	for _, width := range widths {
		cell(&line, rule, strings.Repeat("─", width), 0)
	}
	t.flush(&line)

	for _, row := range t.rows {
		for i, value := range row {
			var c *color.Color
			if t.opts.Style != nil && !t.opts.NoColor {
				c = t.opts.Style(i, value)
			}
			cell(&line, c, value, widths[i]-len(value))
		}
		t.flush(&line)
	}
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, value := range row {
			widths[i] = max(widths[i], len(value))
		}
	}
	return widths
}

// flush writes the buffered line without trailing blanks.
func (t *Table) flush(line *strings.Builder) {
	fmt.Fprintln(t.w, strings.TrimRight(line.String(), " "))
	line.Reset()
}

// cell appends value, pad blanks and the column gap.
func cell(line *strings.Builder, c *color.Color, value string, pad int) {
	if c != nil {
		c.Fprint(line, value)
	} else {
		line.WriteString(value)
	}
	line.WriteString(strings.Repeat(" ", pad+2))
}

func (t *Table) color(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if t.opts.NoColor {
		c.DisableColor()
	}
	return c
}

// KeyValueTable renders "key: value" lines with the values aligned.
type KeyValueTable struct {
	w       io.Writer
	rows    []kvRow
	noColor bool
}

type kvRow struct {
	key   string
	value string
	color *color.Color
}

// NewKeyValueTable creates a new key-value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{w: w, noColor: noColor}
}

// AddRow adds a plain key-value pair.
func (t *KeyValueTable) AddRow(key, value string) {
	t.rows = append(t.rows, kvRow{key: key, value: value})
}

// AddColoredRow adds a key-value pair whose value is highlighted.
func (t *KeyValueTable) AddColoredRow(key, value string, c *color.Color) {
	t.rows = append(t.rows, kvRow{key: key, value: value, color: c})
}

// Render writes the rows. An empty table renders nothing.
func (t *KeyValueTable) Render() {
	keyWidth := 0
	for _, row := range t.rows {
		keyWidth = max(keyWidth, len(row.key)+1)
	}

	keyColor := color.New(color.FgCyan)
	if t.noColor {
		keyColor.DisableColor()
	}
	for _, row := range t.rows {
		keyColor.Fprint(t.w, padRight(row.key+":", keyWidth))
		fmt.Fprint(t.w, " ")
		if row.color != nil && !t.noColor {
			row.color.Fprintln(t.w, row.value)
		} else {
			fmt.Fprintln(t.w, row.value)
		}
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// Header renders a title underlined to its own width.
func Header(w io.Writer, title string, noColor bool) {
	bold := color.New(color.Bold, color.FgCyan)
	rule := color.New(color.FgHiBlack)
	if noColor {
		bold.DisableColor()
		rule.DisableColor()
	}
	bold.Fprintln(w, title)
	rule.Fprintln(w, strings.Repeat("─", len(title)))
}
