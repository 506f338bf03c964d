package main

import (
	"os"

	"github.com/lowember/ember/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
