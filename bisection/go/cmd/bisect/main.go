// package main is the main executable for the bisect cli interface.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	bisectcli "go.skia.org/perfbisect/bisection/go/cmd/bisect/cli"
)

func main() {
	app := &cli.App{
		Name:        "bisect",
		Description: "bisect finds the commits that changed the result of a test.",
		Commands: []*cli.Command{
			bisectcli.RunCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
