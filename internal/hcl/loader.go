// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package hcl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/ftdgo/internal/config"
	"github.com/specialistvlad/ftdgo/internal/ctxlog"
	"github.com/specialistvlad/ftdgo/internal/ftderr"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// ConfigFileName is the name of the HCL project file.
const ConfigFileName = config.ProjectFileName

// Loader is the HCL implementation of config.ProjectLoader.
type Loader struct {
	// Environ returns the environment exposed to expressions as `env`.
	Environ func() []string
}

var _ config.ProjectLoader = (*Loader)(nil)

// NewLoader creates a loader that exposes the process environment.
func NewLoader() *Loader {
	return &Loader{Environ: os.Environ}
}

// Load reads and translates the project file at path.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ftderr.NotFoundf(path, 0, "project file %s not found", path)
	}
	if err != nil {
		return nil, ftderr.InvalidInputf(path, "reading project file: %v", err)
	}
	return l.Parse(ctx, path, src)
}

// Parse translates the project file src. Relative paths in the file are
// resolved against the directory of filename.
func (l *Loader) Parse(ctx context.Context, filename string, src []byte) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "file", filename)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	model := config.DefaultModel()
	base := filepath.Dir(filename)
	translatePackage(root.Package, &model.Package, base)
	translateOutput(root.Output, &model.Output, base)

	evalCtx := l.evalContext()
	for _, v := range root.Variables {
		if _, dup := model.Variables[v.Name]; dup {
			return nil, ftderr.InvalidInputf(filename, "variable %q is declared twice", v.Name)
		}
		val, err := translateVariable(ctx, v, evalCtx)
		if err != nil {
			return nil, ftderr.InvalidInputf(filename, "variable %q: %v", v.Name, err)
		}
		model.Variables[v.Name] = val
	}
	for _, a := range root.Aliases {
		if _, dup := model.Aliases[a.Name]; dup {
			return nil, ftderr.InvalidInputf(filename, "alias %q is declared twice", a.Name)
		}
		if strings.ContainsAny(a.Name, ".#$@ ") || a.Name == "" {
			return nil, ftderr.InvalidInputf(filename, "invalid alias name %q", a.Name)
		}
		model.Aliases[a.Name] = a.Document
	}

	logger.Debug("HCL loading complete.",
		"package", model.Package.Name,
		"root", model.Package.Root,
		"variables", len(model.Variables),
		"aliases", len(model.Aliases),
	)
	return model, nil
}

// evalContext exposes the environment and a few string functions to
// variable expressions.
func (l *Loader) evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	if l.Environ != nil {
		for _, kv := range l.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
				env[k] = cty.StringVal(v)
			}
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(env)},
		Functions: map[string]function.Function{
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
			"join":   stdlib.JoinFunc,
			"format": stdlib.FormatFunc,
			"concat": stdlib.ConcatFunc,
		},
	}
}
