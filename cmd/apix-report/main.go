// Package main is the entry point for the apix-report CLI.
package main

import (
	"github.com/apixtools/cisco-apix/cmd/apix-report/cmd"
)

func main() {
	cmd.Execute()
}
