package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"github.com/samber/lo"
)

const columnGap = 2

// Columns lays candidates out column by column in as many columns as fit in
// width. A width below one candidate yields a single column.
func Columns(candidates []string, width int) string {
	if len(candidates) == 0 {
		return ""
	}

	widths := lo.Map(candidates, func(c string, _ int) int { return uniseg.StringWidth(c) })
	cell := lo.Max(widths) + columnGap
	cols := max(width/cell, 1)
	rows := (len(candidates) + cols - 1) / cols

	var b strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := c*rows + r
			if i >= len(candidates) {
				break
			}
			b.WriteString(StyledCandidate(candidates[i]))
			if c < cols-1 && i+rows < len(candidates) {
				b.WriteString(strings.Repeat(" ", cell-widths[i]))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteCandidates writes candidates as columns fitting width.
func WriteCandidates(w io.Writer, candidates []string, width int) error {
	_, err := io.WriteString(w, Columns(candidates, width))
	return err
}

// WriteDump writes a tree dump with each line styled.
func WriteDump(w io.Writer, command, dump string) error {
	if _, err := fmt.Fprintf(w, "%s\n", KeyStyle.Render(command)); err != nil {
		return err
	}
	for _, line := range strings.Split(strings.TrimRight(dump, "\n"), "\n") {
		if _, err := fmt.Fprintf(w, "  %s\n", StyledDumpLine(line)); err != nil {
			return err
		}
	}
	return nil
}

// CommonPrefix returns the longest prefix shared by every item.
func CommonPrefix(items []string) string {
	if len(items) == 0 {
		return ""
	}
	prefix := items[0]
	for _, s := range items[1:] {
		for !strings.HasPrefix(s, prefix) {
			_, size := utf8.DecodeLastRuneInString(prefix)
			prefix = prefix[:len(prefix)-size]
			if prefix == "" {
				return ""
			}
		}
	}
	return prefix
}
