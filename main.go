package main

import (
	"os"

	"github.com/nvoss/outreacher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
