package main

import (
	"os"

	"github.com/mailsitter/ddep/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
