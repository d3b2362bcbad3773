// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/ftdgo/internal/config"
	"github.com/specialistvlad/ftdgo/internal/ctxlog"
	"github.com/specialistvlad/ftdgo/internal/fsutil"
	"github.com/specialistvlad/ftdgo/internal/ftd"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	cfg    *Config
	model  *config.Model
	// docs are the document ids to interpret; single is set when DocPath
	// named one file.
	docs      []string
	single    bool
	loader    *config.FileLoader
	variables map[string]ftd.Value
}

// NewApp loads the project configuration and resolves the documents to
// interpret. Results are written to outW unless an output path is
// configured; logs go to logW.
func NewApp(ctx context.Context, outW, logW io.Writer, cfg *Config, projects config.ProjectLoader) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	model, err := loadModel(ctx, cfg, projects)
	if err != nil {
		return nil, err
	}

	variables := make(map[string]ftd.Value, len(model.Variables))
	for name, v := range model.Variables {
		val, err := ftd.FromCty(v)
		if err != nil {
			return nil, fmt.Errorf("project variable %q: %w", name, err)
		}
		variables[name] = val
	}

	a := &App{
		outW:      outW,
		logger:    logger,
		cfg:       cfg,
		model:     model,
		variables: variables,
	}
	if err := a.resolveDocuments(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Application initialised.",
		"root", a.loader.Root,
		"documents", len(a.docs),
		"variables", len(variables),
		"aliases", len(model.Aliases),
	)
	return a, nil
}

// loadModel reads the explicit project file, or the one found next to
// DocPath, falling back to the default model.
func loadModel(ctx context.Context, cfg *Config, projects config.ProjectLoader) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	path := cfg.ConfigPath
	if path == "" {
		path = discoverProjectFile(cfg.DocPath)
	}
	if path == "" || projects == nil {
		logger.Debug("No project file, using defaults.")
		return config.DefaultModel(), nil
	}
	model, err := projects.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load project file: %w", err)
	}
	logger.Debug("Project file loaded.", "path", path, "package", model.Package.Name)
	return model, nil
}

func discoverProjectFile(docPath string) string {
	if docPath == "" {
		return ""
	}
	dir := docPath
	if info, err := os.Stat(docPath); err != nil || !info.IsDir() {
		dir = filepath.Dir(docPath)
	}
	candidate := filepath.Join(dir, config.ProjectFileName)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

// resolveDocuments picks the package root and the document ids from DocPath.
func (a *App) resolveDocuments(ctx context.Context) error {
	pkg := a.model.Package
	docPath := a.cfg.DocPath

	if docPath == "" {
		a.loader = config.NewFileLoader(pkg)
		return a.listDocuments(ctx)
	}

	info, err := os.Stat(docPath)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("document path %s does not exist", docPath)
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", docPath, err)
	}

	if info.IsDir() {
		if a.cfg.DocID != "" {
			return errors.New("a document id can only be given for a single document")
		}
		pkg.Root = docPath
		a.loader = config.NewFileLoader(pkg)
		return a.listDocuments(ctx)
	}

	// A single file: keep the configured root when the file lives below it
	// so imports resolve against the package.
	a.loader = config.NewFileLoader(pkg)
	id, err := documentID(a.loader, docPath)
	if err != nil {
		pkg.Root = filepath.Dir(docPath)
		a.loader = config.NewFileLoader(pkg)
		if id, err = documentID(a.loader, docPath); err != nil {
			return err
		}
	}
	if a.cfg.DocID != "" {
		id = a.cfg.DocID
	}
	a.docs = []string{id}
	a.single = true
	return nil
}

func documentID(l *config.FileLoader, path string) (string, error) {
	if !strings.HasSuffix(path, l.Extension) {
		return "", fmt.Errorf("%s does not have the document extension %s", path, l.Extension)
	}
	absRoot, err := filepath.Abs(l.Root)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return fsutil.DocumentID(absRoot, absPath, l.Extension)
}

func (a *App) listDocuments(ctx context.Context) error {
	docs, err := a.loader.Documents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents in %s: %w", a.loader.Root, err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no %s documents found in %s", a.loader.Extension, a.loader.Root)
	}
	a.docs = docs
	return nil
}

// Model returns the effective project configuration.
func (a *App) Model() *config.Model {
	return a.model
}

// Documents returns the ids the App will interpret.
func (a *App) Documents() []string {
	return append([]string(nil), a.docs...)
}
