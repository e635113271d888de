package main

import (
	"fmt"
	"os"

	"github.com/zsiec/omt-send-test/internal/cli"
)

func main() {
	if err := cli.NewApp().NewDebugCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
