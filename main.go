package main

import (
	"os"

	"github.com/retailops/fleetalloc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
