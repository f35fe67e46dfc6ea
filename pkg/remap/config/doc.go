/*
Package config loads pipeline runner settings for the command line tools.

# Overview

config wraps a map[string]any and provides typed accessor methods that handle
missing keys and type mismatches gracefully by returning default values.
On top of that, Runner gives the run command a validated settings struct
with sensible defaults.

# Basic Usage

Create a Config from any map and extract values with defaults:

	cfg := config.New(map[string]any{
	    "batch_size": 64,
	    "drop_store": "sqlite",
	})

	size := cfg.Int("batch_size", 256)       // 64
	store := cfg.String("drop_store", "memory") // "sqlite"
	missing := cfg.Bool("metrics", false)    // false

Or load the full runner settings in one step:

	runner, err := config.RunnerFromFile("runner.yaml")
	if err != nil {
	    log.Fatal(err)
	}

# Type Coercion

Duration handles multiple input types:
  - string: parsed with time.ParseDuration ("30s", "1h30m")
  - int/float64: interpreted as seconds
  - time.Duration: used directly

All accessors return the default value if the key is missing or the value
cannot be converted to the requested type.

# File Loading

FromFile auto-detects the format by extension: .yaml, .yml, or .json.

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
