package main

import (
	"os"

	"github.com/quietwizar/trading-system/cmd/tradesim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
