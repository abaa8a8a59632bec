// Command sophon runs the affect-driven hypergraph construction engine.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/sophon/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
