package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Forno.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Warm oven gradient (amber to red)
	s1 := termenv.String("  ______                     ").Foreground(p.Color("#fbbf24"))
	s2 := termenv.String(" |  ____|__  _ __ _ __   ___ ").Foreground(p.Color("#f59e0b"))
	s3 := termenv.String(" | |__ / _ \\| '__| '_ \\ / _ \\").Foreground(p.Color("#f97316"))
	s4 := termenv.String(" |  __| (_) | |  | | | | (_) |").Foreground(p.Color("#ea580c"))
	s5 := termenv.String(" |_|   \\___/|_|  |_| |_|\\___/").Foreground(p.Color("#dc2626"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println()
}
