package main

import (
	"log"

	"anisong-quiz/internal/config"
	"anisong-quiz/internal/db"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	cfg := config.Load()
	if err := db.MigrateUp(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	log.Println("database migrations applied")
}
