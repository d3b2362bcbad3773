// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/ftdgo/internal/cli"
	"github.com/specialistvlad/ftdgo/internal/ftderr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func TestRun_InterpretsDocument(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "index.ftd")
	require.NoError(t, os.WriteFile(path, []byte("-- ftd.text: hello\n"), 0o600))

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	err := run(context.Background(), out, errOut, []string{"-log-level", "debug", path}, noEnv)
	require.NoError(t, err, errOut.String())

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Contains(t, doc, "main")
	assert.Contains(t, doc, "data")
	assert.Contains(t, errOut.String(), "App.Run method started.")
}

func TestRun_InterpretationFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "index.ftd")
	require.NoError(t, os.WriteFile(path, []byte("-- ftd.text: $missing\n"), 0o600))

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{path}, noEnv)
	require.Error(t, err)
	assert.True(t, ftderr.Is(err, ftderr.NotFound), "got %v", err)
	assert.Equal(t, 1, cli.ExitCode(err))
}

func TestRun_ProjectFileError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ftd.hcl"), []byte("package {"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.ftd"), []byte("-- ftd.text: hi\n"), 0o600))

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{filepath.Join(dir, "index.ftd")}, noEnv)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load project file")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"}, noEnv)

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"}, noEnv)

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
	assert.Equal(t, 2, cli.ExitCode(err))
}

func TestRun_PrintConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ftd.hcl"), []byte("alias \"ui\" {\n  document = \"lib/ui\"\n}\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.ftd"), []byte("-- ftd.text: hi\n"), 0o600))

	out := &bytes.Buffer{}
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-print-config", filepath.Join(dir, "index.ftd")}, noEnv)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `alias "ui" {`)
	assert.Contains(t, out.String(), `document = "lib/ui"`)
	assert.NotContains(t, out.String(), `"main"`)
}
