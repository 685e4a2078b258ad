package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the UI Engineer banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  _   _ ___   _____             _                     ", "#818cf8"},
		{" | | | |_ _| | ____|_ __   __ _(_)_ __   ___  ___ _ __", "#a78bfa"},
		{" | | | || |  |  _| | '_ \\ / _` | | '_ \\ / _ \\/ _ \\ '__|", "#c084fc"},
		{" | |_| || |  | |___| | | | (_| | | | | |  __/  __/ |", "#e879f9"},
		{"  \\___/|___| |_____|_| |_|\\__, |_|_| |_|\\___|\\___|_|", "#f472b6"},
		{"                          |___/", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	}
	fmt.Fprintln(w)
}
