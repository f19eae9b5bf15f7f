// Command project-purger physically removes projects that have been
// soft-deleted for longer than the retention window, cascading through their
// dependent rows. Meant to run on a schedule.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	projectspostgres "github.com/clockline/clockline/internal/domains/projects/adapters/persistence/postgres"
	platformpostgres "github.com/clockline/clockline/internal/platform/postgres"
)

const defaultRetentionDays = 30

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.TryConnect(ctx, os.Getenv("POSTGRES_DSN"), logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge projects")
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDaysFromEnv())

	var ids []int64
	if err := db.WithContext(ctx).
		Raw("SELECT id FROM projects WHERE deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Scan(&ids).Error; err != nil {
		log.Fatalf("failed to list purgeable projects: %v", err)
	}
	if len(ids) == 0 {
		logger.Info("no projects past retention", slog.Time("cutoff", cutoff))
		return
	}

	repo := projectspostgres.NewRepository(db)
	var purged int
	for _, id := range ids {
		removed, err := repo.Purge(ctx, id)
		if err != nil {
			logger.Error("failed to purge project", slog.Int64("project.id", id), slog.String("error", err.Error()))
			continue
		}
		if removed {
			purged++
		}
	}
	logger.Info("purge finished",
		slog.Int("candidates", len(ids)),
		slog.Int("purged", purged),
		slog.Time("cutoff", cutoff),
	)
}

func retentionDaysFromEnv() int {
	raw := strings.TrimSpace(os.Getenv("PURGE_RETENTION_DAYS"))
	if raw == "" {
		return defaultRetentionDays
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		log.Fatalf("PURGE_RETENTION_DAYS must be a non-negative integer, got %q", raw)
	}
	return days
}
