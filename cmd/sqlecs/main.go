package main

import (
	"fmt"
	"os"

	"github.com/roach88/sqlecs/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorLine(err))
		os.Exit(cli.GetExitCode(err))
	}
}
