// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/ftdgo/internal/app"
	"github.com/specialistvlad/ftdgo/internal/hcl"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an application run.
type HarnessResult struct {
	// Dir is the temporary project directory the files were written to.
	Dir       string
	Output    string
	LogOutput string
	Err       error
	App       *app.App
}

// RunApp writes files below a temporary directory and runs the application
// with cfg. Relative paths in cfg are resolved against that directory; an
// empty DocPath without a ConfigPath means the directory itself.
func RunApp(t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()
	return RunAppWithContext(context.Background(), t, files, cfg)
}

// RunAppWithContext is RunApp with a caller-provided context.
func RunAppWithContext(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	if cfg.DocPath == "" && cfg.ConfigPath == "" {
		cfg.DocPath = dir
	} else {
		cfg.DocPath = inDir(dir, cfg.DocPath)
	}
	cfg.ConfigPath = inDir(dir, cfg.ConfigPath)
	cfg.OutPath = inDir(dir, cfg.OutPath)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}

	res := &HarnessResult{Dir: dir}
	out := &SafeBuffer{}
	logs := &SafeBuffer{}
	defer func() {
		res.Output = out.String()
		res.LogOutput = logs.String()
		if os.Getenv("FTDGO_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), res.LogOutput)
		}
	}()

	appCfg, err := app.NewConfig(cfg)
	if err != nil {
		res.Err = err
		return res
	}
	res.App, res.Err = app.NewApp(ctx, out, logs, appCfg, hcl.NewLoader())
	if res.Err != nil {
		return res
	}
	res.Err = res.App.Run(ctx)
	return res
}

func inDir(dir, p string) string {
	if p == "" || p == "-" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, filepath.FromSlash(p))
}
