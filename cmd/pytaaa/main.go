package main

import (
	"os"

	"github.com/DonaldPG/pytaaa-web/cmd/pytaaa/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
