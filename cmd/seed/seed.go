package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nulzo/neurix/internal/analytics"
	"github.com/nulzo/neurix/internal/config"
	"github.com/nulzo/neurix/internal/store"
	"github.com/nulzo/neurix/internal/store/model"
	"github.com/nulzo/neurix/internal/store/sqlite"
)

// Fills the usage store with sample relay traffic so /api/usage has data.
func main() {
	dsn := flag.String("dsn", "file:neurix.db?cache=shared&mode=rwc", "SQLite DSN")
	days := flag.Int("days", 7, "Spread records over this many days")
	count := flag.Int("count", 200, "Number of records")
	flag.Parse()
	if *days < 1 {
		*days = 1
	}

	repo, err := sqlite.NewSQLiteStorage(*dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer repo.Close()

	models := config.DefaultRelayModels()
	clients := []string{"198.51.100.1", "198.51.100.2", "203.0.113.7"}
	now := time.Now().UTC()

	err = repo.WithTx(context.Background(), func(tx store.Repository) error {
		for i := 0; i < *count; i++ {
			m := models[rand.Intn(len(models))]
			rec := &model.UsageRecord{
				ID:            uuid.New().String(),
				Source:        model.SourceRelay,
				ClientHash:    analytics.HashClient(clients[rand.Intn(len(clients))]),
				Model:         m.Name,
				UpstreamModel: m.Model,
				StatusCode:    http.StatusOK,
				Succeeded:     true,
				LatencyMS:     int64(200 + rand.Intn(1800)),
				CreatedAt:     now.Add(-time.Duration(rand.Int63n(int64(*days) * int64(24*time.Hour)))),
			}
			// roughly one in ten calls hits the upstream free-tier limit
			if rand.Intn(10) == 0 {
				rec.StatusCode = http.StatusTooManyRequests
				rec.Succeeded = false
			} else {
				rec.PromptTokens = 20 + rand.Intn(200)
				rec.CompletionTokens = 50 + rand.Intn(450)
				rec.TotalTokens = rec.PromptTokens + rec.CompletionTokens
			}

			if err := tx.Usage().Record(context.Background(), rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Seeded %d usage records over %d days into %s\n", *count, *days, *dsn)
}
