// Command relcore is a small CLI over the relcore engine: it loads
// connection settings from the environment and runs a demo workload
// against a running Redis-compatible store.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
