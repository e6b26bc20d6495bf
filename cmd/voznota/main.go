package main

import (
	"fmt"
	"os"

	"github.com/rmarin/voznota/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	return cli.NewRootCmd().Execute()
}
