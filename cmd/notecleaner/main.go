// Package main is the entry point for the notecleaner CLI.
package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/ryanfardeen/notecleaner/cmd/notecleaner/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
