package main

import (
	"github.com/comigor/jargone-go/internal/cli"
)

var version = "dev"

func main() {
	cli.Version = version
	cli.Execute()
}
