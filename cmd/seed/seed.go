package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/nulzo/ai-usage-analyzer/internal/archive"
	"github.com/nulzo/ai-usage-analyzer/internal/events"
	"github.com/nulzo/ai-usage-analyzer/internal/platform/logger"
	"github.com/nulzo/ai-usage-analyzer/internal/store/model"
	"github.com/nulzo/ai-usage-analyzer/internal/store/sqlite"
)

func main() {
	dsn := flag.String("dsn", "file:usage.db?cache=shared&mode=rwc&_journal_mode=WAL&_busy_timeout=5000", "SQLite DSN")
	count := flag.Int("count", 50, "Number of demo events to generate")
	flag.Parse()

	zlog := logger.Get()
	defer logger.Sync()

	repo, err := sqlite.NewSQLiteStorage(*dsn, zlog)
	if err != nil {
		log.Fatal(err)
	}
	defer repo.Close()

	processor := events.NewProcessor(archive.Noop{}, zlog)
	svc := events.NewService(repo, processor, zlog)

	actor := model.Identity{UserID: "seed-cli", Role: model.RoleAdmin}

	created, err := svc.GenerateDemo(context.Background(), *count, actor)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("\nSuccessfully seeded database!\n")
	fmt.Printf("Generated %d demo usage events\n", created)
}
