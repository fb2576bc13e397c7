package main

import (
	"os"

	"github.com/hongminglow/carrot/cmd/server/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintErr("Error: %v", err)
		os.Exit(1)
	}
}
