package main

import (
	"os"

	"github.com/gridopt/tnep/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
