// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/ftdgo/internal/app"
	"github.com/specialistvlad/ftdgo/internal/ftderr"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Environment variables consulted when the matching flag is not given.
const (
	EnvConfig    = "FTDGO_CONFIG"
	EnvLogLevel  = "FTDGO_LOG_LEVEL"
	EnvLogFormat = "FTDGO_LOG_FORMAT"
	EnvWorkers   = "FTDGO_WORKERS"
)

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// getenv supplies flag defaults; it may be nil.
func Parse(args []string, output io.Writer, getenv func(string) string) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	envOr := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	workersDefault := 4
	if v := getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, false, usageError("invalid %s: %q is not a number", EnvWorkers, v)
		}
		workersDefault = n
	}

	flagSet := flag.NewFlagSet("ftdgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
ftdgo - interprets FTD documents into a renderable element tree.

Usage:
  ftdgo [options] [DOC_PATH]

Arguments:
  DOC_PATH
    A single .ftd document or a directory of documents. May be omitted when
    -config names a project file.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", envOr(EnvConfig, ""), "Path to the ftd.hcl project file. Defaults to the one next to DOC_PATH.")
	docIDFlag := flagSet.String("doc-id", "", "Document id of a single DOC_PATH. Defaults to its path below the package root.")
	outFlag := flagSet.String("out", "", "Write the result to this file instead of stdout.")
	oFlag := flagSet.String("o", "", "Write the result to this file (shorthand).")
	prettyFlag := flagSet.Bool("pretty", false, "Indent the JSON output.")
	printConfigFlag := flagSet.Bool("print-config", false, "Print the effective project file and exit.")
	logFormatFlag := flagSet.String("log-format", envOr(EnvLogFormat, "text"), "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", envOr(EnvLogLevel, "info"), "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", workersDefault, "Number of documents interpreted concurrently.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err.Error())
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() > 1 {
		return nil, false, usageError("expected at most one DOC_PATH, got %d", flagSet.NArg())
	}
	docPath := flagSet.Arg(0)
	if docPath == "" && *configFlag == "" {
		slog.Debug("No document path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	outPath := *outFlag
	if outPath == "" {
		outPath = *oFlag
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}
	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	if *workersFlag < 1 {
		return nil, false, usageError("invalid workers: must be at least 1")
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		DocPath:     docPath,
		ConfigPath:  *configFlag,
		DocID:       *docIDFlag,
		OutPath:     outPath,
		Pretty:      *prettyFlag,
		PrintConfig: *printConfigFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
		WorkerCount: *workersFlag,
	})
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// ExitCode maps an error returned by the application to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// PrintError writes err to w. Interpreter and project file errors are
// rendered as diagnostics with their document and line.
func PrintError(w io.Writer, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintln(w, exitErr.Message)
		return
	}
	diags := ftderr.Diagnostics(err)
	wr := hcl.NewDiagnosticTextWriter(w, nil, 78, false)
	if werr := wr.WriteDiagnostics(diags); werr != nil {
		fmt.Fprintln(w, err)
	}
}
