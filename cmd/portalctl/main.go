package main

import (
	"os"

	"github.com/partnerhub/portal-server/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
