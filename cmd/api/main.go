package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/gokatarajesh/quiz-bank/internal/app"
	"github.com/gokatarajesh/quiz-bank/internal/config"
	"github.com/gokatarajesh/quiz-bank/internal/logging"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)

	instance, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build app")
	}

	if err := instance.Run(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("runtime error")
	}
}
