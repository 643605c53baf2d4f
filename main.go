package main

import (
	"os"

	"github.com/abhisek/schoolbuddy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
