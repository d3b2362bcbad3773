// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/ftdgo/internal/ctxlog"
	"github.com/specialistvlad/ftdgo/internal/fsutil"
	"github.com/specialistvlad/ftdgo/internal/ftderr"
)

// Loader provides the source text of a document by id.
type Loader interface {
	Load(ctx context.Context, docID string) (string, error)
}

// FileLoader reads `<Root>/<doc-id><Extension>`.
type FileLoader struct {
	Root      string
	Extension string
}

// NewFileLoader creates a FileLoader for the package of m.
func NewFileLoader(p Package) *FileLoader {
	ext := p.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	root := p.Root
	if root == "" {
		root = "."
	}
	return &FileLoader{Root: root, Extension: ext}
}

// Path returns the file a document id maps to.
func (l *FileLoader) Path(docID string) (string, error) {
	clean := path.Clean(docID)
	if docID == "" || clean != docID || strings.HasPrefix(clean, "../") || clean == ".." || path.IsAbs(clean) {
		return "", ftderr.InvalidInputf(docID, "invalid document id %q", docID)
	}
	return filepath.Join(l.Root, filepath.FromSlash(clean)+l.Extension), nil
}

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context, docID string) (string, error) {
	logger := ctxlog.FromContext(ctx)
	p, err := l.Path(docID)
	if err != nil {
		return "", err
	}
	logger.Debug("Loading document.", "doc", docID, "path", p)
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ftderr.NotFoundf(docID, 0, "document %q not found at %s", docID, p)
	}
	if err != nil {
		return "", ftderr.InvalidInputf(docID, "reading %s: %v", p, err)
	}
	return string(b), nil
}

// Documents lists the ids of every document below Root.
func (l *FileLoader) Documents(ctx context.Context) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	files, err := fsutil.FindFilesByExtension(l.Root, l.Extension)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(files))
	for _, f := range files {
		id, err := fsutil.DocumentID(l.Root, f, l.Extension)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	logger.Debug("Found documents.", "root", l.Root, "count", len(ids))
	return ids, nil
}

// MapLoader serves documents from memory, keyed by document id.
type MapLoader map[string]string

// Load implements Loader.
func (m MapLoader) Load(_ context.Context, docID string) (string, error) {
	src, ok := m[docID]
	if !ok {
		return "", ftderr.NotFoundf(docID, 0, "document %q not found", docID)
	}
	return src, nil
}
