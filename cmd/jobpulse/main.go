package main

import (
	"os"

	"github.com/Ruscigno/JobPulse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
