package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dshills/cmdrecall/internal/backend"
	"github.com/dshills/cmdrecall/internal/config"
	"github.com/dshills/cmdrecall/internal/ranker"
	"github.com/dshills/cmdrecall/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("cmdrecall\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: cmdrecall \"your query here\"")
		os.Exit(1)
	}

	// Result rows go to stdout; everything else to stderr.
	log.SetOutput(os.Stderr)

	query := strings.Join(os.Args[1:], " ")
	cfg := config.FromEnv()
	ctx := context.Background()

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open history database: %v", err)
	}
	defer func() { _ = store.Close() }()

	b, err := backend.Select(ctx, cfg, store)
	if err != nil {
		log.Fatalf("Failed to select similarity backend: %v", err)
	}

	rnk, err := ranker.New(store, b)
	if err != nil {
		log.Fatalf("Failed to create ranker: %v", err)
	}
	log.Printf("Using %s backend", rnk.BackendName())

	results, err := rnk.Rank(ctx, query)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	if len(results) == 0 {
		fmt.Println("No similar commands found.")
		return
	}

	for _, res := range results {
		fmt.Printf("%d|%s|%s|%s|%d|%.4f\n",
			res.CommandID, res.Timestamp, res.Cwd, res.Command, res.ExitCode, res.Score)
	}
}
