package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/gokatarajesh/quiz-bank/internal/cli"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		// Optional; the CLI works on defaults without it.
		_ = godotenv.Load("configs/.env")
	}
	os.Exit(cli.Run(os.Args[1:], cli.StdStreams()))
}
