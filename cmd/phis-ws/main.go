// Command phis-ws serves and queries the phenotyping information system.
package main

import (
	"fmt"
	"os"

	"github.com/niio972/phis-ws/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
