// Package main is the entry point for the climb CLI.
package main

import "climb.dev/pkg/climb/cmd"

func main() {
	cmd.Execute()
}
