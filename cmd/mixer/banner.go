package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const bannerArt = `  _  __                 _   __  __ _
 | |/ /___ ___ ___ _ __| | |  \/  (_)_  _____ _ __
 | ' </ _ \_ // -_) |  | | | |\/| | \ \/ / -_) '_|
 |_|\_\___/__\___|_|  |_| |_|  |_|_|/_/\_\___|_|`

var (
	bannerColor = lipgloss.Color("#8BC34A") // Lime Green
	mutedColor  = lipgloss.Color("#6b7280")

	bannerStyle = lipgloss.NewStyle().
			Foreground(bannerColor).
			Bold(true)

	taglineStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			PaddingLeft(1)
)

// renderBanner returns the startup banner.
func renderBanner() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		bannerStyle.Render(bannerArt),
		"",
		taglineStyle.Render("Kozel Mixer: wallet task list shuffler"),
	)
}

func printBanner(w io.Writer) {
	fmt.Fprintln(w, renderBanner())
	fmt.Fprintln(w)
}
