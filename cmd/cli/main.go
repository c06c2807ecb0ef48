// madgresso - plain-text expense claims for web expenses forms
//
// madgresso reads expense claims written one item per line and submits them
// through a form driver.
package main

import (
	"os"

	"github.com/madgresso/madgresso/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
