// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/ftdgo/internal/ftderr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFileLoader_Load(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "lib/ui.ftd", "-- ftd.text: hi\n")
	l := NewFileLoader(Package{Root: root})

	src, err := l.Load(context.Background(), "lib/ui")
	require.NoError(t, err)
	assert.Equal(t, "-- ftd.text: hi\n", src)

	_, err = l.Load(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, ftderr.Is(err, ftderr.NotFound))
}

func TestFileLoader_RejectsEscapingIDs(t *testing.T) {
	l := NewFileLoader(Package{Root: t.TempDir()})
	for _, id := range []string{"", "../secret", "a/../../b", "/etc/passwd", "a//b"} {
		t.Run(id, func(t *testing.T) {
			_, err := l.Load(context.Background(), id)
			require.Error(t, err)
			assert.True(t, ftderr.Is(err, ftderr.InvalidInput))
		})
	}
}

func TestFileLoader_Documents(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "index.ftd", "")
	writeDoc(t, root, "lib/ui.ftd", "")
	writeDoc(t, root, "README.md", "")

	ids, err := NewFileLoader(Package{Root: root, Extension: ".ftd"}).Documents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"index", "lib/ui"}, ids)
}

func TestMapLoader(t *testing.T) {
	l := MapLoader{"lib": "-- integer x: 1\n"}

	src, err := l.Load(context.Background(), "lib")
	require.NoError(t, err)
	assert.Equal(t, "-- integer x: 1\n", src)

	_, err = l.Load(context.Background(), "other")
	assert.True(t, ftderr.Is(err, ftderr.NotFound))
}

func TestDefaultModel(t *testing.T) {
	m := DefaultModel()
	assert.Equal(t, ".", m.Package.Root)
	assert.Equal(t, DefaultExtension, m.Package.Extension)
	assert.Empty(t, m.Variables)
	assert.False(t, m.Output.Pretty)
}
