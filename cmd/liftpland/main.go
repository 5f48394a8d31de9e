package main

import (
	"context"
	"log"
	"os"
	"strings"

	"liftplan/internal/config"
	"liftplan/internal/daemonrun"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{}); err != nil {
		log.Fatalf("liftpland: %v", err)
	}
}

// loadConfig reads the file named by LIFTPLAN_CONFIG, falling back to the
// default search path, and creates the data directory.
func loadConfig() (*config.Config, error) {
	cfg, _, _, err := config.Load(strings.TrimSpace(os.Getenv("LIFTPLAN_CONFIG")))
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return cfg, nil
}
