// Package main is the entry point for the rental-gateway server.
package main

import (
	"os"

	"github.com/donaldgifford/rental-gateway/cmd/rental-gateway/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
