package main

import (
	"os"

	"github.com/ironsheep/invoice-tools/cmd/invoice-tools/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
