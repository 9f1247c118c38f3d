package main

import (
	"os"

	"github.com/fjod/shopdesk/cmd/shopdesk/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
