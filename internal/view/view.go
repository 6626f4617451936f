// Package view renders engine frames as a plain-text dashboard.
package view

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/Alia5/kbjoypad/apitypes"
)

const defaultWidth = 80

// Options control the dashboard layout.
type Options struct {
	ButtonsPerRow int
	// Width is the line width in columns; zero uses 80.
	Width int
}

// TerminalWidth returns the column count of f, or 80 when f is not a
// terminal.
func TerminalWidth(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// Render writes one dashboard for f.
func Render(w io.Writer, f apitypes.Frame, opts Options) error {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.ButtonsPerRow <= 0 {
		opts.ButtonsPerRow = 3
	}
	var b strings.Builder

	fmt.Fprintf(&b, "State: %s  Mode: %s  Period: %.1f ms  Frame #%d\n", f.State, f.Mode, f.PeriodMs, f.Seq)
	fmt.Fprintf(&b, "Average %.2f ms/frame\n", f.FrameDurationMs)

	for _, s := range f.Sticks {
		b.WriteString(rule(s.Label, opts.Width))
		grid(&b, s.Buttons, 4, opts.Width)
	}
	if len(f.LogicalButtons) > 0 {
		b.WriteString(rule("Buttons", opts.Width))
		grid(&b, f.LogicalButtons, opts.ButtonsPerRow, opts.Width)
	}
	if f.Hold != nil {
		grid(&b, []apitypes.Button{*f.Hold}, 1, opts.Width)
	}

	b.WriteString(rule("Settings", opts.Width))
	if len(f.Joypads) > 0 {
		fmt.Fprintf(&b, "Joypad deadzone: %.2f\n", f.Deadzone)
		var names []string
		for _, j := range f.Joypads {
			if j.Active {
				names = append(names, j.Name)
			}
		}
		fmt.Fprintf(&b, "Connected joypads: %s\n", strings.Join(names, ", "))
		fmt.Fprintf(&b, "Joypad axes values: %s\n", signedList(f.RawAxes))
		fmt.Fprintf(&b, "Joypad buttons values: %s\n", boolList(f.RawButtons))
	}
	fmt.Fprintf(&b, "Output axes values: %s\n", signedList(f.Axes))
	fmt.Fprintf(&b, "Output buttons values: %s\n", buttonList(f.Buttons))

	_, err := io.WriteString(w, b.String())
	return err
}

func rule(title string, width int) string {
	line := "-- " + title + " "
	if pad := width - len(line); pad > 0 {
		line += strings.Repeat("-", pad)
	}
	return line + "\n"
}

// grid lays buttons out perRow to a line, each cell an equal share of width.
func grid(b *strings.Builder, buttons []apitypes.Button, perRow, width int) {
	cell := width / perRow
	if cell < 6 {
		cell = 6
	}
	for i, btn := range buttons {
		mark := "[ ]"
		if btn.Active {
			mark = "[x]"
		}
		label := mark + " " + btn.Alias
		if len(label) > cell-1 {
			label = label[:cell-1]
		}
		end := (i+1)%perRow == 0 || i == len(buttons)-1
		if end {
			b.WriteString(label + "\n")
		} else {
			b.WriteString(label + strings.Repeat(" ", cell-len(label)))
		}
	}
}

func signedList(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		sign := ""
		if v >= 0 {
			sign = "+"
		}
		parts[i] = "<" + strconv.Itoa(i) + "> " + sign + strconv.FormatFloat(v, 'f', 2, 64)
	}
	return strings.Join(parts, ", ")
}

func boolList(vs []bool) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		d := "0"
		if v {
			d = "1"
		}
		parts[i] = "<" + strconv.Itoa(i) + "> " + d
	}
	return strings.Join(parts, ", ")
}

func buttonList(vs []float64) string {
	if len(vs) == 0 {
		return "None"
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = "<" + strconv.Itoa(i) + "> " + strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strings.Join(parts, ", ")
}
