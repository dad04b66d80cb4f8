package main

import (
	"os"

	"github.com/tellerdesk-dev/tellerdesk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
