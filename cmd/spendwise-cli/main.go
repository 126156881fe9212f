package main

import (
	"os"

	"github.com/joho/godotenv"

	"spendwise/internal/cli"
	applog "spendwise/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	applog.Setup("spendwise-cli", os.Getenv("LOG_LEVEL"))

	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
