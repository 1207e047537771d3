package main

import (
	"os"

	"github.com/gizetz/gbairai/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
