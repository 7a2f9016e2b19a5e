// Package main is the openspace command itself.
package main

import (
	"log"
	"os"

	"go.viam.com/openspace/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
