package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP      HTTPConfig
	Warehouse WarehouseConfig
	Blob      BlobConfig
	Extractor ExtractorConfig
	Decision  DecisionConfig
	Logging   LoggingConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	AllowedOriginsCSV string
}

// WarehouseConfig describes connectivity to the managed SQL warehouse that
// hosts both the credit history table and the risk model.
type WarehouseConfig struct {
	ProjectID         string
	Location          string
	Dataset           string
	HistoryTable      string
	ApplicationsTable string
	Model             string
}

// BlobConfig locates the object store holding application forms and pending
// inbox payloads. When Bucket is empty, LocalRoot selects the filesystem
// store instead.
type BlobConfig struct {
	Bucket      string
	LocalRoot   string
	FormsPrefix string
	InboxPrefix string
}

// ExtractorConfig locates the document text extraction processor.
type ExtractorConfig struct {
	ProjectID   string
	Location    string
	ProcessorID string
}

// DecisionConfig bounds the decision pipeline's upstream calls.
type DecisionConfig struct {
	LookupTimeout  time.Duration
	ScoringTimeout time.Duration
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultUpstreamTimeout  = 10 * time.Second
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultDataset          = "credit_risk_mvp"
	defaultHistoryTable     = "credit_history"
	defaultApplicationsTbl  = "loan_applications"
	defaultModel            = "risk_score_model"
	defaultFormsPrefix      = "application_forms/"
	defaultInboxPrefix      = "batch_results/"
	defaultDocAILocation    = "us"
	defaultWarehouseRegion  = "US"
)

// Load reads configuration from environment variables, applying defaults.
// A local .env file, when present, is loaded first so development setups
// do not have to export variables by hand.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTP: HTTPConfig{
			Host:            valueOrDefault("SERVER_HOST", defaultHost),
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Warehouse: WarehouseConfig{
			ProjectID:         os.Getenv("PROJECT_ID"),
			Location:          valueOrDefault("WAREHOUSE_LOCATION", defaultWarehouseRegion),
			Dataset:           valueOrDefault("WAREHOUSE_DATASET", defaultDataset),
			HistoryTable:      valueOrDefault("WAREHOUSE_HISTORY_TABLE", defaultHistoryTable),
			ApplicationsTable: valueOrDefault("WAREHOUSE_APPLICATIONS_TABLE", defaultApplicationsTbl),
			Model:             valueOrDefault("WAREHOUSE_MODEL", defaultModel),
		},
		Blob: BlobConfig{
			Bucket:      os.Getenv("BLOB_BUCKET"),
			LocalRoot:   valueOrDefault("BLOB_LOCAL_ROOT", "./data"),
			FormsPrefix: valueOrDefault("BLOB_FORMS_PREFIX", defaultFormsPrefix),
			InboxPrefix: valueOrDefault("BLOB_INBOX_PREFIX", defaultInboxPrefix),
		},
		Extractor: ExtractorConfig{
			ProjectID:   valueOrDefault("DOCAI_PROJECT_ID", os.Getenv("PROJECT_ID")),
			Location:    valueOrDefault("DOCAI_LOCATION", defaultDocAILocation),
			ProcessorID: os.Getenv("DOCAI_PROCESSOR_ID"),
		},
		Decision: DecisionConfig{
			LookupTimeout:  defaultUpstreamTimeout,
			ScoringTimeout: defaultUpstreamTimeout,
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
		{"DECISION_LOOKUP_TIMEOUT", &cfg.Decision.LookupTimeout},
		{"DECISION_SCORING_TIMEOUT", &cfg.Decision.ScoringTimeout},
	}
	for _, d := range durations {
		if v := os.Getenv(d.key); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", d.key, err)
			}
			*d.target = parsed
		}
	}

	cfg.HTTP.AllowedOriginsCSV = os.Getenv("SERVER_ALLOWED_ORIGINS")

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
