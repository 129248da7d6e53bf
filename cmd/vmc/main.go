package main

import (
	"os"

	"github.com/oumajohn/vmhost-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
