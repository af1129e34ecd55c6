package main

import (
	"os"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/cmd/tracker/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
