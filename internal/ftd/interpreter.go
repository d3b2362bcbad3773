// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"context"
	"strings"

	"github.com/specialistvlad/ftdgo/internal/config"
	"github.com/specialistvlad/ftdgo/internal/ctxlog"
	"github.com/specialistvlad/ftdgo/internal/ftderr"
	"github.com/specialistvlad/ftdgo/internal/section"
)

// Option configures Interpret.
type Option func(*options)

type options struct {
	loader    config.Loader
	variables map[string]Value
	aliases   map[string]string
}

// WithLoader sets the loader imports are read through. Without one, any
// `-- import:` of a document other than `ftd` fails.
func WithLoader(l config.Loader) Option {
	return func(o *options) { o.loader = l }
}

// WithVariables predeclares variables in the interpreted document.
func WithVariables(vars map[string]Value) Option {
	return func(o *options) { o.variables = vars }
}

// WithAliases imports the given documents, alias → doc id, into every
// interpreted document.
func WithAliases(aliases map[string]string) Option {
	return func(o *options) { o.aliases = aliases }
}

type interpreter struct {
	opts    options
	bag     map[string]Thing
	locals  map[string]*Variable
	loading map[string]bool
	loaded  map[string]bool
}

// Interpret compiles and executes the document source, returning the
// element tree and its dependency maps.
func Interpret(ctx context.Context, docID, source string, opts ...Option) (*Document, error) {
	logger := ctxlog.FromContext(ctx).With("doc", docID)
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	kernels := newKernelRegistry(ctx)
	in := &interpreter{
		opts:    o,
		bag:     kernelComponents(kernels),
		locals:  make(map[string]*Variable),
		loading: map[string]bool{docID: true},
		loaded:  make(map[string]bool),
	}
	doc := in.newDoc(docID)
	for _, alias := range sortedKeys(o.aliases) {
		if err := in.load(ctx, o.aliases[alias], docID, 0); err != nil {
			return nil, err
		}
	}
	for _, name := range sortedKeys(o.variables) {
		v := o.variables[name]
		if err := doc.insert(0, &Variable{Name: docID + "#" + name, Kind: v.GetKind(), Value: LiteralPV(v)}); err != nil {
			return nil, err
		}
	}

	instructions, err := in.interpretDoc(ctx, doc, source)
	if err != nil {
		return nil, err
	}
	logger.Debug("Compiled document.", "instructions", len(instructions), "bag_size", len(in.bag))

	main, err := newExecutor(doc, kernels).executeMain(ctx, instructions)
	if err != nil {
		return nil, err
	}
	out, err := postProcess(ctx, doc, main)
	if err != nil {
		return nil, err
	}
	out.Instructions = instructions
	logger.Debug("Interpreted document.", "data_entries", len(out.Data), "locals", len(out.Locals))
	return out, nil
}

func (in *interpreter) newDoc(id string) *Doc {
	d := NewDoc(id, in.bag, in.locals)
	for alias, target := range in.opts.aliases {
		d.Aliases[alias] = target
	}
	return d
}

// interpretDoc processes the sections of one document in order and returns
// its top-level instructions.
func (in *interpreter) interpretDoc(ctx context.Context, doc *Doc, source string) ([]Instruction, error) {
	logger := ctxlog.FromContext(ctx)
	sections, err := section.Parse(source, doc.ID)
	if err != nil {
		return nil, err
	}
	sections = section.RemoveComments(sections)
	logger.Debug("Parsed sections.", "doc", doc.ID, "sections", len(sections))

	var out []Instruction
	for i := range sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		instrs, err := in.processSection(ctx, doc, &sections[i])
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
	}
	return out, nil
}

func (in *interpreter) processSection(ctx context.Context, doc *Doc, s *section.Section) ([]Instruction, error) {
	switch {
	case s.Name == "import":
		return nil, in.importDoc(ctx, doc, s)
	case s.Name == "container":
		return []Instruction{{Type: InstrChangeContainer, Container: containerName(s.Caption), Line: s.Line}}, nil
	case strings.HasPrefix(s.Name, "$"):
		return in.invocation(doc, s)
	}

	tokens := strings.Fields(s.Name)
	if len(tokens) == 1 {
		thing, err := doc.GetThing(s.Line, s.Name)
		if err != nil {
			return nil, err
		}
		switch t := thing.(type) {
		case *Variable:
			return nil, doc.updateVariable(t, s)
		case *Component:
			return in.invocation(doc, s)
		}
		return nil, ftderr.Forbiddenf(doc.ID, s.Line, "%q cannot be used as a section", s.Name)
	}

	name := tokens[len(tokens)-1]
	if err := validateName(doc, s.Line, name); err != nil {
		return nil, err
	}
	kindExpr := strings.Join(tokens[:len(tokens)-1], " ")
	switch kindExpr {
	case "record":
		_, err := doc.recordFromSection(s, name)
		return nil, err
	case "or-type":
		_, err := doc.orTypeFromSection(s, name)
		return nil, err
	}
	if thing, err := doc.GetThing(s.Line, kindExpr); err == nil {
		if _, ok := thing.(*Component); ok {
			comp, err := doc.componentFromSection(s, kindExpr, name)
			if err != nil {
				return nil, err
			}
			return nil, doc.insert(s.Line, comp)
		}
	}
	_, err := doc.variableFromSection(s, kindExpr, name)
	return nil, err
}

func validateName(doc *Doc, line int, name string) error {
	if name == "" || strings.ContainsAny(name, ".#$@:") {
		return ftderr.Parsef(doc.ID, line, "invalid name %q", name)
	}
	return nil
}

// invocation compiles a top-level invocation. Its subsections are children,
// or markup styles when the component renders text.
func (in *interpreter) invocation(doc *Doc, s *section.Section) ([]Instruction, error) {
	child, err := doc.childFromSection(s.Name, s.Caption, s.Header, s.Body, argKinds{}, s.Line)
	if err != nil {
		return nil, err
	}
	typ := InstrChildComponent
	if child.IsRecursive {
		typ = InstrRecursiveChildComponent
	}
	if len(s.SubSections) == 0 {
		return []Instruction{{Type: typ, Child: child, Line: s.Line}}, nil
	}
	if child.Reference == nil {
		comp, err := doc.GetComponent(s.Line, child.Root)
		if err != nil {
			return nil, err
		}
		if doc.isTextComponent(s.Line, comp) {
			child.Markups, err = doc.markupsFromSubSections(s.SubSections, argKinds{})
			if err != nil {
				return nil, err
			}
			return []Instruction{{Type: typ, Child: child, Line: s.Line}}, nil
		}
	}
	if child.IsRecursive {
		return nil, ftderr.Forbiddenf(doc.ID, s.Line, "a `$loop$` invocation cannot have children")
	}
	children, err := doc.instructionsFromSubSections(s.SubSections, argKinds{})
	if err != nil {
		return nil, err
	}
	return []Instruction{{Type: InstrComponent, Child: child, Children: children, Line: s.Line}}, nil
}

// importDoc handles `-- import: <doc-id> [as <alias>]`.
func (in *interpreter) importDoc(ctx context.Context, doc *Doc, s *section.Section) error {
	if s.Caption == nil || strings.TrimSpace(*s.Caption) == "" {
		return ftderr.MissingDataf(doc.ID, s.Line, "import needs a document id")
	}
	target, alias, hasAlias := strings.Cut(strings.TrimSpace(*s.Caption), " as ")
	target, alias = strings.TrimSpace(target), strings.TrimSpace(alias)
	if !hasAlias {
		alias = target[strings.LastIndex(target, "/")+1:]
	}
	if alias == "" || strings.ContainsAny(alias, ".#$@ ") {
		return ftderr.Parsef(doc.ID, s.Line, "invalid import alias %q", alias)
	}
	if target != KernelDoc {
		if err := in.load(ctx, target, doc.ID, s.Line); err != nil {
			return err
		}
	}
	doc.Aliases[alias] = target
	return nil
}

// load interprets an imported document into the shared bag once.
func (in *interpreter) load(ctx context.Context, target, from string, line int) error {
	if in.loaded[target] {
		return nil
	}
	if in.loading[target] {
		return ftderr.Forbiddenf(from, line, "import cycle: %q is already being imported", target)
	}
	if in.opts.loader == nil {
		return ftderr.NotFoundf(from, line, "cannot import %q: no document loader configured", target)
	}
	src, err := in.opts.loader.Load(ctx, target)
	if err != nil {
		return ftderr.NotFoundf(from, line, "import %q: %v", target, err)
	}

	in.loading[target] = true
	defer delete(in.loading, target)
	if _, err := in.interpretDoc(ctx, in.newDoc(target), src); err != nil {
		return err
	}
	in.loaded[target] = true
	ctxlog.FromContext(ctx).Debug("Imported document.", "doc", target, "from", from)
	return nil
}
