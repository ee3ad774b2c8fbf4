package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fzft/go-probe-table/dict"
)

const minSlotColumns = 8

type reply interface {
	format(mode OutputMode) string
}

type (
	statusReply string
	intReply    int
	bulkReply   string
	// listReply holds values, quoted in standard output.
	listReply []string
	// textListReply holds preformatted lines, numbered but not quoted.
	textListReply []string
	textReply     string
)

func (r statusReply) format(OutputMode) string { return string(r) }

func (r intReply) format(mode OutputMode) string {
	if mode == OutputRaw {
		return strconv.Itoa(int(r))
	}
	return fmt.Sprintf("(integer) %d", int(r))
}

func (r bulkReply) format(mode OutputMode) string {
	if mode == OutputRaw {
		return string(r)
	}
	return strconv.Quote(string(r))
}

func (r listReply) format(mode OutputMode) string {
	if mode == OutputRaw {
		return strings.Join(r, "\n")
	}
	quoted := make([]string, len(r))
	for i, s := range r {
		quoted[i] = strconv.Quote(s)
	}
	return numbered(quoted)
}

func (r textListReply) format(mode OutputMode) string {
	if mode == OutputRaw {
		return strings.Join(r, "\n")
	}
	return numbered(r)
}

func (r textReply) format(OutputMode) string { return string(r) }

func numbered(lines []string) string {
	if len(lines) == 0 {
		return "(empty array)"
	}
	width := len(strconv.Itoa(len(lines)))
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%*d) %s", width, i+1, l)
	}
	return b.String()
}

func formatError(err error, mode OutputMode) string {
	if mode == OutputRaw {
		return "ERR " + err.Error()
	}
	return "(error) ERR " + err.Error()
}

// renderSlots draws one character per slot, wrapped to width columns with
// the index of the first slot at the start of each row.
func renderSlots(states []dict.SlotState, width int) string {
	if len(states) == 0 {
		return ""
	}
	prefix := len(strconv.Itoa(len(states) - 1))
	cols := width - prefix - 1
	if cols < minSlotColumns {
		cols = minSlotColumns
	}

	var b strings.Builder
	for start := 0; start < len(states); start += cols {
		if start > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%*d ", prefix, start)
		end := min(start+cols, len(states))
		for _, s := range states[start:end] {
			b.WriteByte(slotGlyph(s))
		}
	}
	return b.String()
}

func slotGlyph(s dict.SlotState) byte {
	switch s {
	case dict.SlotOccupied:
		return '#'
	case dict.SlotTombstone:
		return 'x'
	}
	return '.'
}
