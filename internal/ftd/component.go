// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"strings"

	"github.com/specialistvlad/ftdgo/internal/ftderr"
	"github.com/specialistvlad/ftdgo/internal/section"
)

// Component is a kernel or user-defined component. A user component is its
// Root component invoked with Properties, followed by Instructions that fill
// the root's children.
type Component struct {
	FullName     string
	Root         string
	Arguments    map[string]Kind
	Locals       map[string]Kind
	Properties   map[string]Property
	Instructions []Instruction
	Markups      map[string]*ChildComponent
	Events       []EventSpec
	Condition    *Boolean
	Kernel       bool
	// Invocations records the resolved arguments of every executed instance.
	Invocations []map[string]Value
	Line        int
}

// ChildComponent is one compiled invocation.
type ChildComponent struct {
	Root       string
	Condition  *Boolean
	Properties map[string]Property
	// Arguments are the argument kinds visible where the invocation was
	// written.
	Arguments   map[string]Kind
	Events      []EventSpec
	IsRecursive bool
	// Reference is set for `-- $arg:` invocations of a UI-kind argument.
	Reference *PropertyValue
	Markups   map[string]*ChildComponent
	Line      int
}

// InstructionType tags the variant held by an Instruction.
type InstructionType int

const (
	InstrChildComponent InstructionType = iota
	InstrComponent
	InstrChangeContainer
	InstrRecursiveChildComponent
)

// Instruction is one step of the execution stream.
type Instruction struct {
	Type InstructionType
	// Child is the invocation of ChildComponent and RecursiveChildComponent
	// instructions, and the parent of Component instructions.
	Child     *ChildComponent
	Children  []Instruction
	Container string
	Line      int
}

// invocationArguments returns the arguments an invocation may set. User
// components accept the common layout arguments on top of their own; they
// are forwarded to the root element.
func (c *Component) invocationArguments() map[string]Kind {
	if c.Kernel {
		return c.Arguments
	}
	out := commonArguments()
	for name, k := range c.Arguments {
		out[name] = k
	}
	return out
}

// kernelRoot follows the Root chain of c down to its kernel component.
func (d *Doc) kernelRoot(line int, c *Component) (*Component, error) {
	for seen := 0; !c.Kernel; seen++ {
		if seen > len(d.Bag) {
			return nil, ftderr.Forbiddenf(d.ID, line, "component %q has a cyclic root", c.FullName)
		}
		next, err := d.GetComponent(line, c.Root)
		if err != nil {
			return nil, err
		}
		c = next
	}
	return c, nil
}

func (d *Doc) isTextComponent(line int, c *Component) bool {
	k, err := d.kernelRoot(line, c)
	return err == nil && k.FullName == KernelDoc+"#text"
}

// componentFromSection compiles `-- <root> <name>:`.
func (d *Doc) componentFromSection(s *section.Section, rootExpr, name string) (*Component, error) {
	root, err := d.GetComponent(s.Line, rootExpr)
	if err != nil {
		return nil, err
	}
	comp := &Component{
		FullName:  d.ID + "#" + name,
		Root:      root.FullName,
		Arguments: make(map[string]Kind),
		Locals:    make(map[string]Kind),
		Line:      s.Line,
	}
	rootArgs := root.invocationArguments()
	inherited := make(map[string]Property)
	inherit := func(arg string, line int) error {
		k, ok := rootArgs[arg]
		if !ok {
			return d.notFound(line, "cannot inherit %q: %s has no such argument", arg, root.FullName)
		}
		comp.Arguments[arg] = k
		pv := VariablePV(arg, k)
		inherited[arg] = Property{Default: &pv}
		return nil
	}
	declare := func(arg, kindExpr string, def string, uiHeader section.Header, line int) error {
		k, err := d.declaredKind(kindExpr, def, uiHeader, line)
		if err != nil {
			return err
		}
		if local, found := strings.CutPrefix(arg, "@"); found {
			comp.Locals[local] = k
			return nil
		}
		if _, dup := comp.Arguments[arg]; dup {
			return ftderr.Forbiddenf(d.ID, line, "argument %q is declared twice", arg)
		}
		comp.Arguments[arg] = k
		return nil
	}

	header, nested := nestedHeaders(s.Header)
	var (
		rootHeader section.Header
		condition  *section.KV
		events     []section.KV
	)
	for _, kv := range header {
		key := kv.Key
		if _, ok := eventName(key); ok {
			events = append(events, kv)
			continue
		}
		switch {
		case key == "if":
			condition = &kv
		case key == loopVar:
			return nil, ftderr.Forbiddenf(d.ID, kv.Line, "`$loop$` is not allowed on a component declaration")
		case strings.HasPrefix(key, "$"):
			if kv.Value == "inherit" {
				err = inherit(key[1:], kv.Line)
			} else {
				err = declare(key[1:], kv.Value, "", nil, kv.Line)
			}
		case strings.HasPrefix(key, "@"):
			err = declare(key, kv.Value, "", nil, kv.Line)
		default:
			argName, cond := section.SplitCondition(key)
			tokens := strings.Fields(argName)
			if cond != nil || len(tokens) < 2 {
				rootHeader = append(rootHeader, kv)
				for _, n := range nested[kv.Line] {
					rootHeader = append(rootHeader, section.KV{Line: n.Line, Key: ">" + n.Key, Value: n.Value})
				}
				continue
			}
			last := tokens[len(tokens)-1]
			kindExpr := strings.Join(tokens[:len(tokens)-1], " ")
			if kindExpr == "inherit" {
				err = inherit(last, kv.Line)
			} else {
				err = declare(last, kindExpr, kv.Value, nested[kv.Line], kv.Line)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	args := make(argKinds, len(comp.Arguments)+len(comp.Locals))
	for name, k := range comp.Arguments {
		args[name] = k
	}
	for name, k := range comp.Locals {
		args["@"+name] = k
	}
	ec := exprContext{args: args, line: s.Line}

	comp.Properties, err = d.resolveProperties(propertySource{
		header:    rootHeader,
		caption:   s.Caption,
		body:      s.Body,
		args:      rootArgs,
		inherited: inherited,
		owner:     comp.FullName,
		ec:        ec,
	})
	if err != nil {
		return nil, err
	}
	if condition != nil {
		b, err := d.BooleanFromExpr(condition.Value, ec.at(condition.Line))
		if err != nil {
			return nil, err
		}
		comp.Condition = &b
	}
	for _, kv := range events {
		name, _ := eventName(kv.Key)
		ev, err := d.eventFromHeader(name, kv.Value, ec.at(kv.Line))
		if err != nil {
			return nil, err
		}
		comp.Events = append(comp.Events, ev)
	}

	if d.isTextComponent(s.Line, root) {
		comp.Markups, err = d.markupsFromSubSections(s.SubSections, args)
		return comp, err
	}
	comp.Instructions, err = d.instructionsFromSubSections(s.SubSections, args)
	if err != nil {
		return nil, err
	}
	return comp, nil
}

// instructionsFromSubSections compiles the children of a declaration or of
// a top-level invocation.
func (d *Doc) instructionsFromSubSections(subs section.SubSections, args argKinds) ([]Instruction, error) {
	var out []Instruction
	for i := range subs {
		sub := &subs[i]
		if sub.Name == "container" {
			out = append(out, Instruction{Type: InstrChangeContainer, Container: containerName(sub.Caption), Line: sub.Line})
			continue
		}
		child, err := d.childFromSection(sub.Name, sub.Caption, sub.Header, sub.Body, args, sub.Line)
		if err != nil {
			return nil, err
		}
		typ := InstrChildComponent
		if child.IsRecursive {
			typ = InstrRecursiveChildComponent
		}
		out = append(out, Instruction{Type: typ, Child: child, Line: sub.Line})
	}
	return out, nil
}

// markupsFromSubSections compiles `--- <component> <style>:` or
// `--- <style>:` subsections into named markup styles.
func (d *Doc) markupsFromSubSections(subs section.SubSections, args argKinds) (map[string]*ChildComponent, error) {
	if len(subs) == 0 {
		return nil, nil
	}
	out := make(map[string]*ChildComponent, len(subs))
	for i := range subs {
		sub := &subs[i]
		tokens := strings.Fields(sub.Name)
		if len(tokens) == 0 || len(tokens) > 2 {
			return nil, ftderr.Parsef(d.ID, sub.Line, "invalid markup style %q", sub.Name)
		}
		style, compExpr := tokens[len(tokens)-1], tokens[0]
		if _, dup := out[style]; dup {
			return nil, ftderr.Forbiddenf(d.ID, sub.Line, "markup style %q is defined twice", style)
		}
		// The text is supplied per region when the markup is applied.
		placeholder := ""
		child, err := d.childFromSection(compExpr, &placeholder, sub.Header, sub.Body, args, sub.Line)
		if err != nil {
			return nil, err
		}
		out[style] = child
	}
	return out, nil
}

func containerName(caption *string) string {
	if caption == nil {
		return ""
	}
	return strings.TrimSpace(*caption)
}

// childFromSection compiles one invocation. args are the argument kinds of
// the enclosing component, empty at the top level.
func (d *Doc) childFromSection(name string, caption *string, header section.Header, body *section.Body, args argKinds, line int) (*ChildComponent, error) {
	ec := exprContext{args: args, line: line}
	child := &ChildComponent{Line: line, Arguments: args}

	var (
		loop, condition *section.KV
		events          []section.KV
		rest            section.Header
	)
	for _, kv := range header {
		if _, ok := eventName(kv.Key); ok {
			events = append(events, kv)
			continue
		}
		switch kv.Key {
		case loopVar:
			loop = &kv
		case "if":
			condition = &kv
		default:
			rest = append(rest, kv)
		}
	}

	var loopSource PropertyValue
	if loop != nil {
		src, alias, _ := strings.Cut(loop.Value, " as ")
		src = strings.TrimSpace(src)
		if !strings.HasPrefix(src, "$") {
			return nil, ftderr.Parsef(d.ID, loop.Line, "`$loop$` source %q must be a reference", src)
		}
		pv, err := d.resolveReference(src[1:], ec.at(loop.Line))
		if err != nil {
			return nil, err
		}
		if !pv.GetKind().IsList() {
			return nil, ftderr.TypeMismatchf(d.ID, loop.Line, "`$loop$` source %s is %s, expected a list", src, pv.GetKind())
		}
		loopSource = pv
		inner := make(argKinds, len(args)+1)
		for k, v := range args {
			inner[k] = v
		}
		inner[loopVar] = pv.GetKind().ListItem()
		ec.args = inner
		ec.loopAlias = strings.TrimPrefix(strings.TrimSpace(alias), "$")
		child.Arguments = inner
		child.IsRecursive = true
	}

	if ref, found := strings.CutPrefix(name, "$"); found {
		pv, err := d.resolveReference(ref, ec)
		if err != nil {
			return nil, err
		}
		if !pv.GetKind().IsUI() {
			return nil, ftderr.TypeMismatchf(d.ID, line, "%s is %s, expected ftd.ui", name, pv.GetKind())
		}
		if caption != nil || body != nil {
			return nil, ftderr.Forbiddenf(d.ID, line, "%s takes no caption or body", name)
		}
		child.Reference = &pv
		child.Properties, err = d.resolveProperties(propertySource{header: rest, args: commonArguments(), owner: name, ec: ec})
		if err != nil {
			return nil, err
		}
	} else {
		comp, err := d.GetComponent(line, name)
		if err != nil {
			return nil, err
		}
		child.Root = comp.FullName
		child.Properties, err = d.resolveProperties(propertySource{
			header:  rest,
			caption: caption,
			body:    body,
			args:    comp.invocationArguments(),
			owner:   comp.FullName,
			ec:      ec,
		})
		if err != nil {
			return nil, err
		}
	}
	if loop != nil {
		child.Properties[loopVar] = Property{Default: &loopSource}
	}
	if condition != nil {
		b, err := d.BooleanFromExpr(condition.Value, ec.at(condition.Line))
		if err != nil {
			return nil, err
		}
		child.Condition = &b
	}
	for _, kv := range events {
		evName, _ := eventName(kv.Key)
		ev, err := d.eventFromHeader(evName, kv.Value, ec.at(kv.Line))
		if err != nil {
			return nil, err
		}
		child.Events = append(child.Events, ev)
	}
	return child, nil
}
