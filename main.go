// Package main is the entry point of sbm, a self-hosted bookmark manager.
package main

import "github.com/mateconpizza/sbm/cmd"

func main() {
	cmd.Execute()
}
