package config

import (
	"time"

	"github.com/mauv0809/storm-standings/internal/roles"
)

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	Port          string
	LogLevel      string
	DryRun        bool
	AdminUserIDs  []string
	Slack         SlackConfig
	Turso         TursoConfig
	Store         StoreConfig
	Stats         StatsConfig
	Schedule      ScheduleConfig
	Roles         roles.Config
	ProjectID     string
	LookbackLimit int
}

type SlackConfig struct {
	Token         string
	SigningSecret string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// StoreBackend selects where the store document lives.
type StoreBackend string

const (
	BackendSQL  StoreBackend = "sql"
	BackendFile StoreBackend = "file"
)

type StoreConfig struct {
	Backend    StoreBackend
	Path       string
	BackupPath string
}

type StatsConfig struct {
	APIKey            string
	BaseURL           string
	RequestsPerSecond float64
}

type ScheduleConfig struct {
	Interval time.Duration
}
