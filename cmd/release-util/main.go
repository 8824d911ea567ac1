package main

import "github.com/t3sl4/release-util/internal/ui"

func main() {
	// Initialize terminal FIRST, before any charmbracelet imports are used.
	// This keeps OSC 11 background color replies out of the output stream.
	ui.InitTerminal()

	Execute()
}
