// Package main is the twoview command itself.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	twoviewcli "go.viam.com/twoview/cli"
)

func main() {
	app := twoviewcli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		//nolint:errcheck
		fmt.Fprintln(os.Stderr, color.New(color.Bold, color.FgRed).Sprint("Error: ")+err.Error())
		os.Exit(1)
	}
}
