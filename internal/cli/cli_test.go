// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/specialistvlad/ftdgo/internal/app"
	"github.com/specialistvlad/ftdgo/internal/ftderr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		env  map[string]string
		want *app.Config
	}{
		{
			name: "positional path with defaults",
			args: []string{"docs/index.ftd"},
			want: &app.Config{DocPath: "docs/index.ftd", LogFormat: "text", LogLevel: "info", WorkerCount: 4},
		},
		{
			name: "all flags",
			args: []string{"-config", "p/ftd.hcl", "-doc-id", "home", "-out", "o.json", "-pretty", "-print-config", "-log-format", "JSON", "-log-level", "DEBUG", "-workers", "8", "docs"},
			want: &app.Config{
				DocPath: "docs", ConfigPath: "p/ftd.hcl", DocID: "home", OutPath: "o.json", Pretty: true, PrintConfig: true,
				LogFormat: "json", LogLevel: "debug", WorkerCount: 8,
			},
		},
		{
			name: "shorthand output",
			args: []string{"-o", "short.json", "a.ftd"},
			want: &app.Config{DocPath: "a.ftd", OutPath: "short.json", LogFormat: "text", LogLevel: "info", WorkerCount: 4},
		},
		{
			name: "environment defaults",
			args: nil,
			env:  map[string]string{EnvConfig: "ftd.hcl", EnvLogLevel: "warn", EnvLogFormat: "json", EnvWorkers: "2"},
			want: &app.Config{ConfigPath: "ftd.hcl", LogFormat: "json", LogLevel: "warn", WorkerCount: 2},
		},
		{
			name: "flags beat environment",
			args: []string{"-log-level", "error", "x.ftd"},
			env:  map[string]string{EnvLogLevel: "debug"},
			want: &app.Config{DocPath: "x.ftd", LogFormat: "text", LogLevel: "error", WorkerCount: 4},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			cfg, exit, err := Parse(tc.args, out, envMap(tc.env))
			require.NoError(t, err)
			assert.False(t, exit)
			assert.Equal(t, tc.want, cfg)
		})
	}
}

func TestParse_ShouldExit(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {}} {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse(args, out, nil)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		env     map[string]string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"-nope"}, wantMsg: "flag provided but not defined: -nope"},
		{name: "two paths", args: []string{"a", "b"}, wantMsg: "expected at most one DOC_PATH, got 2"},
		{name: "bad format", args: []string{"-log-format", "xml", "a"}, wantMsg: "invalid log-format: must be 'text' or 'json'"},
		{name: "bad level", args: []string{"-log-level", "loud", "a"}, wantMsg: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"},
		{name: "zero workers", args: []string{"-workers", "0", "a"}, wantMsg: "invalid workers: must be at least 1"},
		{name: "bad env workers", args: []string{"a"}, env: map[string]string{EnvWorkers: "many"}, wantMsg: `invalid FTDGO_WORKERS: "many" is not a number`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{}, envMap(tc.env))
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(&ExitError{Code: 2}))
	assert.Equal(t, 2, ExitCode(fmt.Errorf("wrapped: %w", &ExitError{Code: 2})))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
}

func TestPrintError(t *testing.T) {
	out := &bytes.Buffer{}
	PrintError(out, fmt.Errorf("run: %w", ftderr.MissingDataf("index", 3, "text is required")))
	assert.Contains(t, out.String(), "index")
	assert.Contains(t, out.String(), "line 3")
	assert.Contains(t, out.String(), "text is required")

	out.Reset()
	PrintError(out, &ExitError{Code: 2, Message: "bad flag"})
	assert.Equal(t, "bad flag\n", out.String())
}
