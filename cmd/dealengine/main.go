// Package main is the entry point for the deal engine.
package main

import (
	"os"

	"github.com/dealscout/deal-engine/cmd/dealengine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
