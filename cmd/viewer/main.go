package main

import (
	"log"
	"os"

	"go-bosszp-automation/internal/config"
	"go-bosszp-automation/internal/viewer"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("❌ Failed to load config: %v", err)
	}

	handler := viewer.Routes(viewer.Handlers{
		DataDir: cfg.DataDir,
		Log:     logger,
	})
	if err := viewer.Start(cfg.ViewerAddr, handler, logger); err != nil {
		logger.Fatalf("❌ Viewer stopped: %v", err)
	}
}
