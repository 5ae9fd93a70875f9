// Package main provides the leapgen command.
package main

import (
	"os"

	"github.com/leapstack-labs/leapgen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
