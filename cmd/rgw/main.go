// Package main is the entry point for the rgw CLI client.
package main

import (
	"github.com/donaldgifford/rental-gateway/cmd/rgw/cmd"
)

func main() {
	cmd.Execute()
}
