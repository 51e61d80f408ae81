package main

import "github.com/pfrederiksen/nascar-schedule/internal/cli"

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cli.Execute(version)
}
