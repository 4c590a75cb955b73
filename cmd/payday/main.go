package main

import (
	"os"

	"github.com/payday-dev/payday/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
