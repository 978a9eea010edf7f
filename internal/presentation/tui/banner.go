package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Espalier.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Leafy green fading into warm amber
	s1 := termenv.String("   ___  ___ _ __   __ _| (_) ___ _ __").Foreground(p.Color("#4ade80"))
	s2 := termenv.String("  / _ \\/ __| '_ \\ / _` | | |/ _ \\ '__|").Foreground(p.Color("#86efac"))
	s3 := termenv.String(" |  __/\\__ \\ |_) | (_| | | |  __/ |").Foreground(p.Color("#d9f99d"))
	s4 := termenv.String("  \\___||___/ .__/ \\__,_|_|_|\\___|_|").Foreground(p.Color("#fde047"))
	s5 := termenv.String("           |_|").Foreground(p.Color("#fbbf24"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println()
}
