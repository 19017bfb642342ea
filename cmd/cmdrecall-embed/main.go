package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dshills/cmdrecall/internal/config"
	"github.com/dshills/cmdrecall/internal/embedder"
	"github.com/dshills/cmdrecall/internal/generator"
	"github.com/dshills/cmdrecall/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("cmdrecall-embed\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	log.SetOutput(os.Stderr)

	cfg := config.FromEnv()
	ctx := context.Background()

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open history database: %v", err)
	}
	defer func() { _ = store.Close() }()

	emb, err := embedder.NewFromEnv(cfg.ForceCPUOnly)
	if err != nil {
		log.Fatalf("Failed to create embedding provider: %v", err)
	}
	defer func() { _ = emb.Close() }()

	log.Printf("Using %s provider (%s)", emb.Provider(), emb.Model())

	gen := generator.New(store, emb)
	stats, err := gen.Run(ctx, nil)
	if err != nil {
		log.Fatalf("Generation failed: %v", err)
	}

	if stats.Pending == 0 {
		log.Println("All commands already have embeddings, nothing to do")
		return
	}
	log.Printf("Embedded %d of %d pending commands in %v", stats.Embedded, stats.Pending, stats.Duration)
}
