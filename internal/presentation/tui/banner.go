package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the sheetpilot banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  ___ _              _   ___ _ _     _   ", "#34d399"},
		{" / __| |_  ___ ___ _| |_| _ (_) |___| |_ ", "#10b981"},
		{" \\__ \\ ' \\/ -_) -_)_   _|  _/ | / _ \\  _|", "#059669"},
		{" |___/_||_\\___\\___| |_| |_| |_|_\\___/\\__|", "#047857"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, termenv.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
