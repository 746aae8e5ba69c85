package main

import (
	"os"

	"github.com/werdl/get-rust/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
