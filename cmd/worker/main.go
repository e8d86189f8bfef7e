package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"marketplace-backend/internal/config"
	"marketplace-backend/pkg/container"
	"marketplace-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)

	c, err := container.NewContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer c.Cleanup()

	if err := RunWorker(c); err != nil {
		log.Fatalf("Worker error: %v", err)
	}
}
