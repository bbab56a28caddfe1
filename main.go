// Package main is the entry point for the brochure CLI.
package main

import "github.com/safuente/web-brochure-creator/cmd"

func main() {
	cmd.Execute()
}
