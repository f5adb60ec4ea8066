// Command faturactl manages the invoice ledger from a terminal, using the same
// storage configuration as the web server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(openFromEnv).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
