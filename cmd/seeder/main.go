package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mauv0809/storm-standings/internal/database"
	"github.com/mauv0809/storm-standings/internal/standings"
	"github.com/mauv0809/storm-standings/internal/storage"
)

const defaultPlayers = 25

var ranks = []string{
	standings.Unranked,
	"Bronze 1", "Bronze 2", "Bronze 3",
	"Silver 1", "Silver 2", "Silver 3",
	"Gold 1", "Gold 2", "Gold 3",
	"Platinum 1", "Platinum 2", "Platinum 3",
	"Diamond 1", "Diamond 2", "Diamond 3",
	"Elite", "Champion", "Unreal",
}

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":           "standings.db",
		"TURSO_PRIMARY_URL": "",
		"TURSO_AUTH_TOKEN":  "",
		"STORE_BACKEND":     "sql",
		"STORE_PATH":        "data/standings.json",
		"STORE_BACKUP_PATH": "data/standings_backup.json",
		"SEED_PLAYERS":      strconv.Itoa(defaultPlayers),
		"SEED":              strconv.FormatInt(time.Now().UnixNano(), 10),
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			config[key] = value
		}
	}
	return config
}

func main() {
	log.Info("Starting store seeder...")
	cfg := loadConfig()
	ctx := context.Background()

	players, err := strconv.Atoi(cfg["SEED_PLAYERS"])
	if err != nil || players < 1 {
		log.Fatalf("Error: SEED_PLAYERS must be a positive number, got %q", cfg["SEED_PLAYERS"])
	}
	seed, err := strconv.ParseInt(cfg["SEED"], 10, 64)
	if err != nil {
		log.Fatalf("Error: SEED must be a number, got %q", cfg["SEED"])
	}

	var backend storage.Backend
	if strings.EqualFold(cfg["STORE_BACKEND"], "file") {
		backend = storage.NewFileBackend(cfg["STORE_PATH"], cfg["STORE_BACKUP_PATH"])
	} else {
		db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
		if err != nil {
			log.Fatalf("Failed to initialize database: %s", err)
		}
		defer teardown()
		backend = storage.NewSQLBackend(db)
	}
	store := storage.New(backend)

	faker := gofakeit.New(uint64(seed))
	startTime := time.Now()
	root, err := store.MutateMerged(ctx, func(root *standings.RootStore) error {
		for range players {
			member := "U" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
			root.Register(member, faker.Gamertag())
			for _, period := range standings.Periods {
				root.SetStats(period, member, fakeStats(faker, period))
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to seed store: %s", err)
	}
	log.Info("Successfully seeded the store.", "added", players, "registered", len(root.Members()), "seed", seed, "duration", time.Since(startTime))
}

// fakeStats scales the counters with the length of the period.
func fakeStats(faker *gofakeit.Faker, period standings.Period) standings.Stats {
	scale := map[standings.Period]int{
		standings.Daily:    1,
		standings.Weekly:   7,
		standings.Season:   60,
		standings.Lifetime: 400,
	}[period]
	return standings.Stats{
		Wins:         faker.Number(0, 2*scale),
		Eliminations: faker.Number(0, 15*scale),
		Assists:      faker.Number(0, 8*scale),
		Damage:       faker.Number(0, 1500*scale),
		Level:        faker.Number(1, 200),
		BRRank:       faker.RandomString(ranks),
		ZBRank:       faker.RandomString(ranks),
	}
}
