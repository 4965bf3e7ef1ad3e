// Package config provides functionality for managing configuration options
// for the client using command-line flags and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"
)

// Options holds the configuration values for the client.
type Options struct {
	// APIBaseURL is the root URL of the tourism backend.
	APIBaseURL string

	// CredentialsFile is the path of the persisted-token file.
	CredentialsFile string

	// RequestTimeout bounds every network call. Zero disables the
	// timeout and leaves a stuck request hanging, as the original
	// client did.
	RequestTimeout time.Duration

	// LogLevel sets the zap level ("debug", "info", "warn", "error").
	LogLevel string

	// Config is the path to the Config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.APIBaseURL, "url", "http://localhost:3001", "backend base URL")
	flag.StringVar(&options.CredentialsFile, "creds", "credentials.json", "path to the credentials file")
	flag.DurationVar(&options.RequestTimeout, "timeout", 15*time.Second, "request timeout (0 disables)")
	flag.StringVar(&options.LogLevel, "loglevel", "info", "log level")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
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

	if baseURL := os.Getenv("API_BASE_URL"); baseURL != "" {
		options.APIBaseURL = baseURL
	}
	if creds := os.Getenv("CREDENTIALS_FILE"); creds != "" {
		options.CredentialsFile = creds
	}

	return options
}
