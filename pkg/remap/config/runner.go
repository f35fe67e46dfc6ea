package config

import (
	"fmt"
	"time"
)

// Defaults for runner settings.
const (
	// DefaultBatchSize is how many events a batch evaluation covers.
	DefaultBatchSize = 256

	// DefaultDropStore keeps dropped events in memory.
	DefaultDropStore = "memory"

	// DefaultDropPath is where the sqlite drop store writes.
	DefaultDropPath = "drops.db"
)

// Runner holds the settings the run command builds its pipeline from.
type Runner struct {
	// Program is the path of the program document to compile.
	Program string

	// BatchSize is the number of events evaluated per batch.
	BatchSize int

	// BatchTimeout bounds one batch evaluation. Zero means no bound.
	BatchTimeout time.Duration

	// DropStore selects where dropped events go: "memory" or "sqlite".
	DropStore string

	// DropPath is the sqlite file used when DropStore is "sqlite".
	DropPath string

	// DropLimit bounds the memory drop store. Zero uses the store default.
	DropLimit int

	// Metrics enables the OpenTelemetry metrics recorder.
	Metrics bool
}

// RunnerFromFile loads runner settings from a YAML or JSON file.
func RunnerFromFile(path string) (Runner, error) {
	cfg, err := FromFile(path)
	if err != nil {
		return Runner{}, err
	}
	r := RunnerFromConfig(cfg)
	if err := r.Validate(); err != nil {
		return Runner{}, err
	}
	return r, nil
}

// RunnerFromConfig extracts runner settings, filling defaults for
// anything the config does not set.
func RunnerFromConfig(cfg Config) Runner {
	return Runner{
		Program:      cfg.String("program", ""),
		BatchSize:    cfg.Int("batch_size", DefaultBatchSize),
		BatchTimeout: cfg.Duration("batch_timeout", 0),
		DropStore:    cfg.String("drop_store", DefaultDropStore),
		DropPath:     cfg.String("drop_path", DefaultDropPath),
		DropLimit:    cfg.Int("drop_limit", 0),
		Metrics:      cfg.Bool("metrics", false),
	}
}

// Validate reports settings no pipeline can be built from.
func (r Runner) Validate() error {
	if r.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1, got %d", r.BatchSize)
	}
	switch r.DropStore {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown drop_store %q (want memory or sqlite)", r.DropStore)
	}
	return nil
}
