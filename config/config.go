/*
Package config loads and validates the environment-driven configuration
shared by the foreach engine and the partitioner.

Grounded on raja-aiml-flowgraph's two configuration idioms: environment
loading via godotenv.Load (examples/rag-pgvector-openai/internal/config)
and struct-tag validation via a package-level *validator.Validate
instance (pkg/validation/enhanced.go).
*/
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// Config holds the settings both subsystems in this module read at
// startup.
type Config struct {
	// Workers is the number of goroutines the ForEach engine runs.
	Workers int `validate:"required,min=1"`

	// WorklistChunk is the configured worklist chunk size. Nothing in
	// this module reads it; foreach.InitialFill sizes its slices from the
	// worker count alone.
	WorklistChunk int `validate:"required,min=1"`

	// HostID is this process's host id within the partition.
	HostID int `validate:"min=0"`

	// NumHosts is the total number of hosts in the partition.
	NumHosts int `validate:"required,min=1"`

	// PartitionBase is the base path META/vertexID-map sidecar files are
	// read from (see partition.MetaFileName).
	PartitionBase string `validate:"required"`

	// PostgresDSN, if non-empty, switches partition metadata storage
	// from sidecar files to partition/store.PostgresReader.
	PostgresDSN string

	// CheckpointPath, if non-empty, enables periodic loop-progress
	// snapshots via checkpoint.Store.
	CheckpointPath string
}

// Load reads process environment variables (optionally seeded from a
// ".env" file via godotenv, ignored if absent) into a Config, applying
// defaults, and validates the result. prefix, if non-empty, is
// prepended to every variable name (e.g. prefix "AMORPHOUS_" reads
// "AMORPHOUS_WORKERS").
func Load(prefix string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Workers:        envInt(prefix+"WORKERS", 4),
		WorklistChunk:  envInt(prefix+"WORKLIST_CHUNK", 1024),
		HostID:         envInt(prefix+"HOST_ID", 0),
		NumHosts:       envInt(prefix+"NUM_HOSTS", 1),
		PartitionBase:  envString(prefix+"PARTITION_BASE", ""),
		PostgresDSN:    envString(prefix+"POSTGRES_DSN", ""),
		CheckpointPath: envString(prefix+"CHECKPOINT_PATH", ""),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	if cfg.HostID >= cfg.NumHosts {
		return nil, fmt.Errorf("config: HOST_ID %d out of range for NUM_HOSTS %d", cfg.HostID, cfg.NumHosts)
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
