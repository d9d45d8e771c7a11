package main

import (
	"context"
	"log"

	"orgaudit/internal/app/server"
	"orgaudit/internal/platform/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := server.Run(context.Background(), cfg); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
