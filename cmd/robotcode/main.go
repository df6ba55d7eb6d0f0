// Package main is the entry point for the robotcode terminal companion.
package main

import "github.com/febb0e/robotcode/internal/cmd"

func main() {
	cmd.Execute()
}
