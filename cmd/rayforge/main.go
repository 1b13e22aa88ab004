// cmd/rayforge/main.go
//
// Entry point for the rayforge task runner. Everything lives in internal/cli;
// main only turns its result into the process exit status.

package main

import (
	"os"

	"github.com/kingrea/rayforge/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
