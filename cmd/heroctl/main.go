package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"heroes/cmd/heroctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
