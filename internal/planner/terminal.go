package planner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TerminalChooser lists labels in a numbered table and reads a selection
// expression such as "1,3-5" or "all".
type TerminalChooser struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// NewTerminalChooser binds a chooser to the given streams.
func NewTerminalChooser(in io.Reader, out io.Writer) *TerminalChooser {
	return &TerminalChooser{In: in, Out: out}
}

// Choose prompts until at least minCount valid entries are chosen or input ends.
func (c *TerminalChooser) Choose(ctx context.Context, labels []string, minCount int) ([]int, error) {
	if len(labels) == 0 {
		return nil, ErrNoSelection
	}
	if c.reader == nil {
		c.reader = bufio.NewReader(c.In)
	}
	fmt.Fprintln(c.Out, renderChoices(labels))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fmt.Fprintf(c.Out, "Select recordings to download (e.g. 1,3-5 or all) [all]: ")
		line, err := c.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read selection: %w", err)
		}
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
			return nil, ErrNoSelection
		}
		indices, parseErr := ParseSelection(line, len(labels))
		if parseErr == nil && len(indices) >= minCount {
			return indices, nil
		}
		if parseErr != nil {
			fmt.Fprintf(c.Out, "Invalid selection: %v\n", parseErr)
		} else {
			fmt.Fprintf(c.Out, "Select at least %d recording(s).\n", minCount)
		}
		if errors.Is(err, io.EOF) {
			return nil, ErrNoSelection
		}
	}
}

func renderChoices(labels []string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Recording"})
	for i, label := range labels {
		tw.AppendRow(table.Row{i + 1, label})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// ParseSelection parses a 1-based selection expression into sorted, unique
// 0-based indices. An empty expression or "all" selects everything.
func ParseSelection(expr string, count int) ([]int, error) {
	expr = strings.TrimSpace(strings.ToLower(expr))
	if expr == "" || expr == "all" || expr == "*" {
		all := make([]int, count)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	chosen := make([]bool, count)
	for _, part := range strings.FieldsFunc(expr, func(r rune) bool { return r == ',' || r == ' ' }) {
		lo, hi, err := parseSpan(part)
		if err != nil {
			return nil, err
		}
		if lo < 1 || hi > count {
			return nil, fmt.Errorf("%q is outside 1-%d", part, count)
		}
		for n := lo; n <= hi; n++ {
			chosen[n-1] = true
		}
	}
	indices := make([]int, 0, count)
	for i, ok := range chosen {
		if ok {
			indices = append(indices, i)
		}
	}
	return indices, nil
}

func parseSpan(part string) (int, int, error) {
	if from, to, ok := strings.Cut(part, "-"); ok {
		lo, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range %q", part)
		}
		hi, err := strconv.Atoi(strings.TrimSpace(to))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range %q", part)
		}
		if lo > hi {
			return 0, 0, fmt.Errorf("range %q is reversed", part)
		}
		return lo, hi, nil
	}
	n, err := strconv.Atoi(part)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid number %q", part)
	}
	return n, n, nil
}
