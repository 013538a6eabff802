// Package config provides functionality for managing configuration options
// for the application using command-line flags, an optional JSON config
// file, and environment variables.
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
	// Addr defines the server's listening address (ip:port).
	Addr string

	// DatabaseDSN holds the PostgreSQL connection string. When empty, the
	// server keeps all state in the local file store instead.
	DatabaseDSN string

	// StorageDir is the directory of the local file store.
	StorageDir string

	// SnapshotDir is where periodic JSON backups are written. Empty
	// disables the snapshot writer.
	SnapshotDir string

	// SnapshotInterval is the time between snapshots, as a Go duration
	// string (e.g. "24h").
	SnapshotInterval string

	// Config is the path to the JSON config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Addr, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "postgres DSN (empty = local file store)")
	flag.StringVar(&options.StorageDir, "s", "data", "local storage directory")
	flag.StringVar(&options.SnapshotDir, "snapshots", "", "backup snapshot directory (empty = disabled)")
	flag.StringVar(&options.SnapshotInterval, "snapshot-interval", "24h", "time between backup snapshots")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags, the optional config file, and
// environment variables to set configuration values. It returns a pointer
// to the Options struct containing the parsed configuration values.
func Parse() *Options {
	// A local .env file, when present, feeds the environment overrides.
	_ = godotenv.Load()

	flag.Parse()

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

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Addr = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if dir := os.Getenv("STORAGE_DIR"); dir != "" {
		options.StorageDir = dir
	}
	if dir := os.Getenv("SNAPSHOT_DIR"); dir != "" {
		options.SnapshotDir = dir
	}

	return options
}
