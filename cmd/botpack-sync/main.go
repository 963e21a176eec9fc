package main

import (
	"os"

	"github.com/bianoble/botpack-sync/cmd/botpack-sync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
