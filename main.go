// Package main is the entry point for the Inkwell admin CLI.
package main

import (
	"inkwell/cli/cmd"
)

func main() {
	cmd.Execute()
}
