// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.ftd", "a.ftd", "lib/ui.ftd", "notes.txt"} {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("-- ftd.text: hi\n"), 0o644))
	}

	files, err := FindFilesByExtension(root, ".ftd")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.ftd"),
		filepath.Join(root, "b.ftd"),
		filepath.Join(root, "lib", "ui.ftd"),
	}, files)
}

func TestFindFilesByExtension_MissingRoot(t *testing.T) {
	_, err := FindFilesByExtension(filepath.Join(t.TempDir(), "missing"), ".ftd")
	assert.Error(t, err)
}

func TestFindFilesByExtension_EmptyExtensionPanics(t *testing.T) {
	assert.Panics(t, func() { _, _ = FindFilesByExtension(".", "") })
}

func TestDocumentID(t *testing.T) {
	root := filepath.Join("site", "docs")

	id, err := DocumentID(root, filepath.Join(root, "lib", "ui.ftd"), ".ftd")
	require.NoError(t, err)
	assert.Equal(t, "lib/ui", id)

	id, err = DocumentID(root, filepath.Join(root, "index.ftd"), ".ftd")
	require.NoError(t, err)
	assert.Equal(t, "index", id)

	_, err = DocumentID(root, filepath.Join("site", "other.ftd"), ".ftd")
	assert.Error(t, err)
}
