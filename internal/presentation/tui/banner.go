package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the mrsim banner to w, coloured when w supports it.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct{ text, color string }{
		{"                          _           ", "#818cf8"},
		{"  _ __ ___  _ __ ___ (_)_ __ ___  ", "#a78bfa"},
		{" | '_ ` _ \\| '__/ __|| | '_ ` _ \\ ", "#c084fc"},
		{" | | | | | | |  \\__ \\| | | | | | |", "#e879f9"},
		{" |_| |_| |_|_|  |___/|_|_| |_| |_|", "#f472b6"},
	}
	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
