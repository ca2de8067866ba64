package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	notifierslack "github.com/mauv0809/storm-standings/internal/notifier/slack"
	"github.com/mauv0809/storm-standings/internal/ranking"
	"github.com/mauv0809/storm-standings/internal/roles"
	"github.com/mauv0809/storm-standings/internal/scheduler"
	"github.com/mauv0809/storm-standings/internal/standings"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}
	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	return cfg
}

// FromEnv builds the configuration from lookup. Missing required variables
// and malformed values are reported together.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	var problems []string

	// A helper function to get a required env var.
	getEnv := func(key string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		problems = append(problems, fmt.Sprintf("required environment variable %s is not set", key))
		return ""
	}
	getEnvDefault := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}
	parse := func(key string, fallback string, fn func(string) error) {
		if err := fn(getEnvDefault(key, fallback)); err != nil {
			problems = append(problems, fmt.Sprintf("invalid %s: %v", key, err))
		}
	}

	cfg := Config{
		DBName:   getEnvDefault("DB_NAME", "standings.db"),
		Port:     getEnvDefault("PORT", "8080"),
		LogLevel: getEnvDefault("LOG_LEVEL", "info"),
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN"),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET"),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnvDefault("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnvDefault("TURSO_AUTH_TOKEN", ""),
		},
		Store: StoreConfig{
			Backend:    StoreBackend(strings.ToLower(getEnvDefault("STORE_BACKEND", string(BackendSQL)))),
			Path:       getEnvDefault("STORE_PATH", "data/standings.json"),
			BackupPath: getEnvDefault("STORE_BACKUP_PATH", "data/standings_backup.json"),
		},
		Stats: StatsConfig{
			APIKey:  getEnvDefault("STATS_API_KEY", ""),
			BaseURL: getEnvDefault("STATS_BASE_URL", ""),
		},
		ProjectID:    getEnvDefault("GCP_PROJECT", ""),
		AdminUserIDs: splitList(getEnvDefault("ADMIN_USER_IDS", "")),
	}

	if cfg.Store.Backend != BackendSQL && cfg.Store.Backend != BackendFile {
		problems = append(problems, fmt.Sprintf("invalid STORE_BACKEND %q, expected sql or file", cfg.Store.Backend))
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("invalid LOG_LEVEL: %v", err))
	}
	parse("DRY_RUN", "false", func(v string) (err error) {
		cfg.DryRun, err = strconv.ParseBool(v)
		return err
	})
	parse("UPDATE_INTERVAL", scheduler.DefaultInterval.String(), func(v string) (err error) {
		cfg.Schedule.Interval, err = time.ParseDuration(v)
		if err == nil && cfg.Schedule.Interval <= 0 {
			err = fmt.Errorf("must be positive")
		}
		return err
	})
	parse("LOOKBACK_LIMIT", strconv.Itoa(notifierslack.DefaultLookbackLimit), func(v string) (err error) {
		cfg.LookbackLimit, err = strconv.Atoi(v)
		if err == nil && cfg.LookbackLimit < 1 {
			err = fmt.Errorf("must be at least 1")
		}
		return err
	})
	parse("STATS_REQUESTS_PER_SECOND", "1", func(v string) (err error) {
		cfg.Stats.RequestsPerSecond, err = strconv.ParseFloat(v, 64)
		return err
	})
	cfg.Roles = roleConfig(getEnvDefault)

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

// roleConfig reads ROLE_<PERIOD>_<TIER>, e.g. ROLE_SEASON_TOP_1.
func roleConfig(getEnvDefault func(key, fallback string) string) roles.Config {
	cfg := roles.Config{}
	for _, period := range standings.Periods {
		for _, tier := range ranking.Tiers {
			key := strings.ToUpper(fmt.Sprintf("ROLE_%s_%s", period, tier))
			id := getEnvDefault(key, "")
			if id == "" {
				continue
			}
			if cfg[period] == nil {
				cfg[period] = map[ranking.Tier]string{}
			}
			cfg[period][tier] = id
		}
	}
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
