package main

import (
	"os"

	"github.com/0genblik/discord-bot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
