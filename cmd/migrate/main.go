package main

import (
	"context"
	"log"
	"time"

	"pulse-chat/config"
	"pulse-chat/internal/repository"
	"pulse-chat/pkg/database"
)

// Applies the schema migrations and exits. The API server runs the same
// migrations on boot; this binary exists for deploy pipelines that
// migrate before rolling instances.
func main() {
	cfg := config.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	log.Println("migrations applied")
}
