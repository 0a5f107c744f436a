package main

import (
	"context"
	"os"

	"finboard/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	app := cli.NewApp(version)
	if err := app.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
