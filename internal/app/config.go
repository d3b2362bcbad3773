// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// DocPath is a document file or a directory of documents. When empty the
	// package root of the project file is used.
	DocPath string
	// ConfigPath is the project file. When empty, an `ftd.hcl` next to
	// DocPath is used if it exists.
	ConfigPath string
	// DocID overrides the document id derived from DocPath. Only valid when
	// DocPath is a single file.
	DocID string
	// OutPath overrides the output path of the project file. Empty means the
	// App's output writer.
	OutPath string
	Pretty  bool
	// PrintConfig asks for the effective project file instead of a run.
	PrintConfig bool

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.DocPath == "" && cfg.ConfigPath == "" {
		return nil, errors.New("a document path or a project file is required")
	}
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}
	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("worker count must not be negative, got %d", cfg.WorkerCount)
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 4
	}
	return &cfg, nil
}
