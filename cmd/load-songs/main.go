package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"anisong-quiz/internal/catalog"
	"anisong-quiz/internal/config"
	"anisong-quiz/internal/db"
	"anisong-quiz/internal/logging"
	"anisong-quiz/internal/quiz"
)

func main() {
	filePath := flag.String("file", "songs.csv", "path to songs csv")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	loaded, err := run(config.Load(), *filePath)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("loaded %d songs", loaded)
}

func run(cfg config.Config, path string) (int, error) {
	songs, err := catalog.ReadSongsFile(path)
	if err != nil {
		return 0, fmt.Errorf("read songs: %w", err)
	}

	if err := db.MigrateUp(cfg.DatabaseURL); err != nil {
		return 0, fmt.Errorf("database migration failed: %w", err)
	}
	conn, err := db.Open(cfg)
	if err != nil {
		return 0, fmt.Errorf("database connection failed: %w", err)
	}
	defer func() {
		if err := db.Close(conn); err != nil {
			log.Printf("close database: %v", err)
		}
	}()

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	svc := quiz.NewService(db.NewStore(conn), logger)
	loaded, err := svc.ImportSongs(context.Background(), songs)
	if err != nil {
		return 0, fmt.Errorf("import songs: %w", err)
	}
	return loaded, nil
}
