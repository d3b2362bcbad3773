// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/specialistvlad/ftdgo/internal/ctxlog"
	"github.com/specialistvlad/ftdgo/internal/ftd"
	"golang.org/x/sync/errgroup"
)

// Run interprets every resolved document and writes the result. A single
// document is written as its JSON; several are written as one object keyed
// by document id.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.logger.Info("🚀 Interpreting documents.", "count", len(a.docs), "workers", a.workerCount())
	results, err := a.interpretAll(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("🏁 Interpretation finished.")

	out, err := a.render(results)
	if err != nil {
		return fmt.Errorf("failed to serialise output: %w", err)
	}
	if err := a.write(ctx, out); err != nil {
		return err
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) workerCount() int {
	return max(1, min(a.cfg.WorkerCount, len(a.docs)))
}

// interpretAll feeds the document ids to a fixed pool of workers. The first
// failure cancels the remaining work.
func (a *App) interpretAll(ctx context.Context) (map[string]*ftd.Document, error) {
	jobs := make(chan string)
	results := make(map[string]*ftd.Document, len(a.docs))
	var mu sync.Mutex
	store := func(id string, doc *ftd.Document) {
		mu.Lock()
		defer mu.Unlock()
		results[id] = doc
	}

	g, gctx := errgroup.WithContext(ctx)
	for workerID := range a.workerCount() {
		g.Go(func() error {
			return a.worker(gctx, jobs, workerID, store)
		})
	}
	g.Go(func() error {
		defer close(jobs)
		for _, id := range a.docs {
			select {
			case jobs <- id:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// worker is the processing loop of a single worker.
func (a *App) worker(ctx context.Context, jobs <-chan string, workerID int, store func(string, *ftd.Document)) error {
	ctx, logger := ctxlog.With(ctx, "workerID", workerID)
	logger.Debug("Worker started.")

	for id := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		docCtx, docLogger := ctxlog.With(ctx, "doc", id)
		docLogger.Debug("Worker picked up document.")

		src, err := a.loader.Load(docCtx, id)
		if err != nil {
			return err
		}
		doc, err := ftd.Interpret(docCtx, id, src,
			ftd.WithLoader(a.loader),
			ftd.WithVariables(a.variables),
			ftd.WithAliases(a.aliasesFor(id)),
		)
		if err != nil {
			docLogger.Error("Interpretation failed.", "error", err)
			return err
		}
		store(id, doc)
		docLogger.Debug("Document interpreted.", "data_entries", len(doc.Data))
	}

	logger.Debug("Worker finished.")
	return nil
}

// aliasesFor drops the project aliases that point at id itself.
func (a *App) aliasesFor(id string) map[string]string {
	out := make(map[string]string, len(a.model.Aliases))
	for alias, target := range a.model.Aliases {
		if target != id {
			out[alias] = target
		}
	}
	return out
}

func (a *App) pretty() bool {
	return a.cfg.Pretty || a.model.Output.Pretty
}

func (a *App) render(results map[string]*ftd.Document) ([]byte, error) {
	if a.single {
		return results[a.docs[0]].JSON(a.pretty())
	}
	if a.pretty() {
		return json.MarshalIndent(results, "", "  ")
	}
	return json.Marshal(results)
}

func (a *App) write(ctx context.Context, out []byte) error {
	logger := ctxlog.FromContext(ctx)
	path := a.cfg.OutPath
	if path == "" {
		path = a.model.Output.Path
	}
	out = append(out, '\n')

	if path == "" || path == "-" {
		if _, err := a.outW.Write(out); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Info("Wrote output.", "path", path, "bytes", len(out))
	return nil
}
