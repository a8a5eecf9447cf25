// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and
// an optional JSON config file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// DataDir is the directory holding the persisted session and
	// admin blobs when the file store is used.
	DataDir string

	// DatabaseDSN, when non-empty, switches persistence to the
	// PostgreSQL blob store.
	DatabaseDSN string

	// AdminAddr is the listen address of the admin dashboard server.
	AdminAddr string

	// AdminAccessKey gates the admin dashboard. A UI gate only,
	// not a security boundary.
	AdminAccessKey string

	// GenAIBaseURL is the base URL of the generative-content API.
	GenAIBaseURL string

	// GenAIAPIKey authenticates against the generative-content API.
	GenAIAPIKey string

	// LogLevel sets the zap log level.
	LogLevel string

	// Config is the path to the JSON config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.DataDir, "data", ".", "directory for persisted state blobs")
	flag.StringVar(&options.DatabaseDSN, "d", "", "postgres dsn for blob storage (optional)")
	flag.StringVar(&options.AdminAddr, "a", "localhost:8081", "admin dashboard listen address")
	flag.StringVar(&options.AdminAccessKey, "admin-key", "19733369", "admin dashboard access key")
	flag.StringVar(&options.GenAIBaseURL, "genai-url", "https://generativelanguage.googleapis.com", "generative API base URL")
	flag.StringVar(&options.LogLevel, "log-level", "info", "log level")
	flag.StringVar(&options.Config, "config", "", "path to config file")
	flag.StringVar(&options.Config, "c", "", "path to config file (shorthand)")
}

// Parse parses command-line flags, the optional .env file, the optional
// JSON config file and environment variables, in that order of
// increasing precedence for the environment. It returns a pointer to
// the Options struct containing the resolved configuration values.
func Parse() *Options {
	flag.Parse()

	// A missing .env is not an error; it simply means the key must
	// come from the real environment.
	_ = godotenv.Load()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if v := os.Getenv("TRUSTDATE_DATA_DIR"); v != "" {
		options.DataDir = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		options.DatabaseDSN = v
	}
	if v := os.Getenv("ADMIN_ADDRESS"); v != "" {
		options.AdminAddr = v
	}
	if v := os.Getenv("ADMIN_ACCESS_KEY"); v != "" {
		options.AdminAccessKey = v
	}
	if v := os.Getenv("GENAI_BASE_URL"); v != "" {
		options.GenAIBaseURL = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		options.GenAIAPIKey = v
	}

	return options
}
