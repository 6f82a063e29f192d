// Package config loads lowering.Options the way the teacher's own config
// package loads its settings: hardcoded defaults, overridden by a `.env`
// file (github.com/joho/godotenv), overridden in turn by LVC_-prefixed
// environment variables (spec.md §6 "Options", SPEC_FULL.md §1.3).
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/oxhq/lvc/internal/lowering"
)

// Load builds lowering.Options from defaults, an optional .env file, and
// LVC_-prefixed environment variables, in that override order. envFile may
// be empty, in which case no specific .env path is read and loading falls
// through to godotenv's own default lookup — a missing .env file is not an
// error, since it's optional.
func Load(envFile string) lowering.Options {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	} else {
		_ = godotenv.Load()
	}

	opts := lowering.DefaultOptions()

	if v := os.Getenv("LVC_BASE_COMPONENT"); v != "" {
		opts.BaseComponent = v
	}
	if v := os.Getenv("LVC_BASE_COMPONENT_IMPORT_URI"); v != "" {
		opts.BaseComponentImportUri = v
	}
	if v := os.Getenv("LVC_ALLOW_UNRESOLVED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.AllowUnresolved = b
		}
	}
	if v := os.Getenv("LVC_OUTPUT_COMPONENT_META"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.OutputComponentMeta = b
		}
	}

	return opts
}
