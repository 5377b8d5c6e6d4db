// Package main is the entry point for vipps-sync CLI.
package main

import (
	"os"

	"github.com/dagskassen/vipps-accounting/cmd/vipps-sync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
