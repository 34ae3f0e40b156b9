// The medner binary is the command line interface for local extraction,
// risk screening, and outbreak queries against a running API server.
package main

import (
	"os"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/interfaces/cli"
)

func main() {
	os.Exit(cli.Execute())
}
