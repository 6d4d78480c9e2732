// Package main is the entry point for the taskmgr CLI.
package main

import (
	"os"

	"github.com/lazypower/taskmgr/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
