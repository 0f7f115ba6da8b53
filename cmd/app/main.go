package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"SignalDesk/internal/di"
	"SignalDesk/pkg/config"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("config %s not found, using defaults", *configPath)
			cfg = config.Default()
		} else {
			log.Fatalf("config load failed: %v", err)
		}
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
