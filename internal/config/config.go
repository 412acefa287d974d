// Package config assembles runtime settings from three layers, lowest
// precedence first: built-in defaults, environment variables (optionally via
// a .env file), and command-line flags.
package config

import (
	"errors"
	"io/fs"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// EnvPrefix namespaces this program's environment variables.
const EnvPrefix = "TXNETL_"

// Config is the full runtime configuration.
type Config struct {
	DatabaseKind string // "sqlite" or "postgres"
	DatabaseDSN  string

	UsersCSV        string
	TransactionsCSV string

	ListenAddr string

	LogLevel  string // debug, info, warn, error
	LogFormat string // text, json

	RejectDir string

	MetricsBackend string // "none" or "pushgateway"
	PushgatewayURL string

	ResetTables bool
	IngestOnly  bool
}

// Default returns the baseline configuration: a local SQLite file, the
// conventional raw_data CSV layout, and the API on localhost:5000.
func Default() Config {
	return Config{
		DatabaseKind:    "sqlite",
		DatabaseDSN:     "transactions_data.db",
		UsersCSV:        "raw_data/users.csv",
		TransactionsCSV: "raw_data/transactions.csv",
		ListenAddr:      "localhost:5000",
		LogLevel:        "info",
		LogFormat:       "text",
		RejectDir:       "rejected_data",
		MetricsBackend:  "none",
	}
}

// LoadDotEnv reads key=value pairs from a .env file into the process by way
// of the returned map. A missing file is not an error.
func LoadDotEnv(path string) (map[string]string, error) {
	vals, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return vals, nil
}

// LoadEnv overlays environment values onto c. get is usually os.Getenv, but
// any lookup works; .env maps are layered by wrapping get.
func (c *Config) LoadEnv(get func(string) string) {
	set := func(key string, dst *string) {
		if v := get(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v := get(EnvPrefix + key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	set("DATABASE_KIND", &c.DatabaseKind)
	set("DATABASE_DSN", &c.DatabaseDSN)
	set("USERS_CSV", &c.UsersCSV)
	set("TRANSACTIONS_CSV", &c.TransactionsCSV)
	set("LISTEN_ADDR", &c.ListenAddr)
	set("LOG_LEVEL", &c.LogLevel)
	set("LOG_FORMAT", &c.LogFormat)
	set("REJECT_DIR", &c.RejectDir)
	set("METRICS_BACKEND", &c.MetricsBackend)
	set("PUSHGATEWAY_URL", &c.PushgatewayURL)
	setBool("RESET_TABLES", &c.ResetTables)
	setBool("INGEST_ONLY", &c.IngestOnly)
}

// RegisterFlags binds the fields to fs. Call after env loading so the
// current values become the flag defaults and flags win the precedence.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.DatabaseKind, "db", c.DatabaseKind, "database backend: sqlite or postgres")
	fs.StringVar(&c.DatabaseDSN, "dsn", c.DatabaseDSN, "database DSN (file path for sqlite)")
	fs.StringVar(&c.UsersCSV, "users-csv", c.UsersCSV, "path to the users CSV file")
	fs.StringVar(&c.TransactionsCSV, "transactions-csv", c.TransactionsCSV, "path to the transactions CSV file")
	fs.StringVar(&c.ListenAddr, "addr", c.ListenAddr, "API listen address")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: text or json")
	fs.StringVar(&c.RejectDir, "reject-dir", c.RejectDir, "directory for rejected-row audit files (empty disables)")
	fs.StringVar(&c.MetricsBackend, "metrics", c.MetricsBackend, "metrics backend: none or pushgateway")
	fs.StringVar(&c.PushgatewayURL, "pushgateway-url", c.PushgatewayURL, "Prometheus Pushgateway base URL")
	fs.BoolVar(&c.ResetTables, "reset-tables", c.ResetTables, "drop and recreate both tables before loading")
	fs.BoolVar(&c.IngestOnly, "ingest-only", c.IngestOnly, "run the ingestion and exit without serving the API")
}
