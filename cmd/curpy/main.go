package main

import (
	"fmt"
	"os"

	// The freshness policy needs Europe/Berlin even where the host has no
	// zone database.
	_ "time/tzdata"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "curpy: %v\n", err)
		os.Exit(1)
	}
}
