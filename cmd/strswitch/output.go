package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var (
	passColor  = color.New(color.FgGreen, color.Bold)
	failColor  = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow)
	labelColor = color.New(color.FgCyan)
)

// usageError marks errors caused by bad flags or arguments.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func errUsage(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// errFailed is returned when some tables failed; details were already printed.
var errFailed = errors.New("one or more switches failed")

func printError(w io.Writer, err error) {
	if errors.Is(err, errFailed) {
		fmt.Fprintln(w, failColor.Sprint("error:"), err)
		return
	}
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(w, failColor.Sprint("usage:"), ue.msg)
		return
	}
	fmt.Fprintln(w, failColor.Sprint("error:"), err)
}

// table collects rows and writes them with columns padded to their display
// width, so wide and combining characters in keys stay aligned.
type table struct {
	header []string
	rows   [][]string
}

func (t *table) add(cells ...string) { t.rows = append(t.rows, cells) }

func (t *table) write(w io.Writer) error {
	widths := make([]int, len(t.header))
	all := append([][]string{t.header}, t.rows...)
	for _, row := range all {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(stripANSI(cell)))
		}
	}
	for _, row := range all {
		var sb strings.Builder
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			if i == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(cell)
			sb.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(stripANSI(cell))))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(sb.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}

// stripANSI drops SGR escape sequences so colored cells measure correctly.
func stripANSI(s string) string {
	if !strings.Contains(s, "\x1b[") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			i = j
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func quiet(cmd *cobra.Command) bool {
	q, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && q
}
