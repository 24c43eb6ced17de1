// Command gatewayctl is the operator CLI for the portfolio API gateway.
package main

import (
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand(defaultEnv())
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
