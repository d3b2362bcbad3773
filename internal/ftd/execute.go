// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"context"
	"strconv"
	"strings"

	"github.com/specialistvlad/ftdgo/internal/ftderr"
	"github.com/specialistvlad/ftdgo/internal/registry"
)

// mainContainer is the container name that moves the cursor back to the
// root of the current instruction stream.
const mainContainer = "ftd.main"

type executor struct {
	doc     *Doc
	kernels *registry.Registry[KernelSpec]
}

func newExecutor(doc *Doc, kernels *registry.Registry[KernelSpec]) *executor {
	return &executor{doc: doc, kernels: kernels}
}

// frame is the environment one invocation executes in.
type frame struct {
	scope Scope
	// path is the execution path of the element being built. Locals of
	// component instances are keyed by it.
	path []int
	// markups are styles inherited from the invocation this element is the
	// root of.
	markups map[string]markupStyle
}

type markupStyle struct {
	child *ChildComponent
	scope Scope
}

// slot is an open container of a component instance. Elements inserted into
// it are also recorded as external children of the owner.
type slot struct {
	owner    []int
	receiver []int
	openID   string
}

// externalRef ties an external child of the owner at owner to the element it
// copies, at path.
type externalRef struct {
	owner []int
	index int
	path  []int
}

// cursor tracks where the next element of an instruction stream goes.
type cursor struct {
	root     *Element
	base     []int
	current  []int
	named    map[string][][]int
	slots    map[string]slot
	external []externalRef
}

func newCursor(root *Element, base []int) *cursor {
	c := &cursor{
		root:  root,
		base:  base,
		named: make(map[string][][]int),
		slots: make(map[string]slot),
	}
	c.register(root, nil)
	return c
}

func pathKey(path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}

func joinPath(parts ...[]int) []int {
	var out []int
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// nextPath is the execution path the next inserted element will have.
func (c *cursor) nextPath() []int {
	return joinPath(c.base, c.current, []int{len(c.root.At(c.current).Children())})
}

// register records every identified container within el, el at path.
func (c *cursor) register(el *Element, path []int) {
	if el.Container == nil {
		return
	}
	if el.Common != nil && el.Common.ID != "" {
		c.named[el.Common.ID] = append(c.named[el.Common.ID], append([]int(nil), path...))
	}
	for i := range el.Container.Children {
		c.register(&el.Container.Children[i], joinPath(path, []int{i}))
	}
}

func (c *cursor) insert(d *Doc, line int, el Element) ([]int, error) {
	target := c.root.At(c.current)
	if target == nil || target.Container == nil {
		return nil, ftderr.Forbiddenf(d.ID, line, "the current container cannot hold children")
	}
	target.Container.Children = append(target.Container.Children, el)
	path := joinPath(c.current, []int{len(target.Container.Children) - 1})

	if s, ok := c.slotFor(c.current); ok {
		owner := c.root.At(s.owner)
		ext := owner.Container.ExternalChildren
		if ext == nil {
			ext = &ExternalChildren{OpenID: s.openID}
			owner.Container.ExternalChildren = ext
		}
		rel := append([]int{}, c.current[len(s.owner):]...)
		if !containsPath(ext.Paths, rel) {
			ext.Paths = append(ext.Paths, rel)
		}
		ext.Children = append(ext.Children, el.Clone())
		c.external = append(c.external, externalRef{owner: s.owner, index: len(ext.Children) - 1, path: path})
	}
	c.register(c.root.At(path), path)
	return path, nil
}

// slotFor finds the slot whose owner records elements inserted at path: the
// slot at path itself, else the nearest instance containing path, such as a
// sibling container of its slot selected by `container:`. Paths below a slot
// belong to the content placed there, not to the owner.
func (c *cursor) slotFor(path []int) (slot, bool) {
	if s, ok := c.slots[pathKey(path)]; ok {
		return s, true
	}
	var best slot
	found := false
	for _, s := range c.slots {
		if len(s.owner) >= len(path) || !hasPrefix(path, s.owner) || hasPrefix(path, s.receiver) {
			continue
		}
		if !found || len(s.owner) > len(best.owner) {
			best, found = s, true
		}
	}
	return best, found
}

func hasPrefix(path, prefix []int) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}

// syncExternal refreshes the external children copies with what was placed
// into them after insertion. Later references are refreshed first so owners
// nested in external children are current when their ancestors copy them.
func (c *cursor) syncExternal() {
	for i := len(c.external) - 1; i >= 0; i-- {
		ref := c.external[i]
		owner, el := c.root.At(ref.owner), c.root.At(ref.path)
		if owner == nil || el == nil {
			continue
		}
		owner.Container.ExternalChildren.Children[ref.index] = el.Clone()
	}
}

func containsPath(paths [][]int, p []int) bool {
	for _, q := range paths {
		if pathKey(q) == pathKey(p) {
			return true
		}
	}
	return false
}

// open moves the cursor into el when it is an open container. Open
// containers of component instances become slots.
func (c *cursor) open(d *Doc, line int, el *Element, path []int, instance bool) error {
	if el.IsNull() || el.Container == nil || !el.Container.IsOpen() {
		return nil
	}
	receiver := path
	if id := el.Container.OpenID; id != "" {
		rel, ok := findID(el, id, nil)
		if !ok {
			return d.notFound(line, "open container %q not found", id)
		}
		receiver = joinPath(path, rel)
	}
	if instance {
		c.slots[pathKey(receiver)] = slot{owner: path, receiver: receiver, openID: el.Container.OpenID}
	}
	c.current = receiver
	return nil
}

// findID returns the path, relative to el, of the first container with id
// in pre-order.
func findID(el *Element, id string, path []int) ([]int, bool) {
	if el.Container == nil {
		return nil, false
	}
	if el.Common != nil && el.Common.ID == id {
		return path, true
	}
	for i := range el.Container.Children {
		if p, ok := findID(&el.Container.Children[i], id, joinPath(path, []int{i})); ok {
			return p, true
		}
	}
	return nil, false
}

func (c *cursor) change(d *Doc, line int, name string) error {
	if name == mainContainer {
		c.current = nil
		return nil
	}
	paths, ok := c.named[name]
	if !ok {
		return d.notFound(line, "container %q not found", name)
	}
	c.current = paths[0]
	return nil
}

// receiver is where the explicit children of el go.
func receiver(d *Doc, line int, el *Element, path []int) ([]int, error) {
	if el.Container == nil {
		return nil, ftderr.Forbiddenf(d.ID, line, "%s cannot have children", el.Type)
	}
	if id := el.Container.OpenID; id != "" {
		rel, ok := findID(el, id, nil)
		if !ok {
			return nil, d.notFound(line, "open container %q not found", id)
		}
		return joinPath(path, rel), nil
	}
	return path, nil
}

// executeMain runs the top-level instructions into a root Column.
func (x *executor) executeMain(ctx context.Context, instructions []Instruction) (Element, error) {
	main := Element{Type: ElementColumn, Common: &Common{}, Container: &Container{Children: []Element{}}}
	cur := newCursor(&main, nil)
	if err := x.run(ctx, cur, instructions, Scope{}); err != nil {
		return Element{}, err
	}
	cur.syncExternal()
	return main, nil
}

func (x *executor) run(ctx context.Context, cur *cursor, instructions []Instruction, scope Scope) error {
	d := x.doc
	for _, instr := range instructions {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch instr.Type {
		case InstrChangeContainer:
			if err := cur.change(d, instr.Line, instr.Container); err != nil {
				return err
			}
		case InstrRecursiveChildComponent:
			els, err := x.loop(ctx, instr.Child, scope, cur.nextPath())
			if err != nil {
				return err
			}
			for _, el := range els {
				if _, err := cur.insert(d, instr.Line, el); err != nil {
					return err
				}
			}
		case InstrChildComponent, InstrComponent:
			el, comp, err := x.call(ctx, instr.Child, frame{scope: scope, path: cur.nextPath()})
			if err != nil {
				return err
			}
			path, err := cur.insert(d, instr.Line, el)
			if err != nil {
				return err
			}
			if el.IsNull() {
				continue
			}
			instance := comp != nil && !comp.Kernel
			if instr.Type == InstrComponent {
				into, err := receiver(d, instr.Line, &el, path)
				if err != nil {
					return err
				}
				saved := cur.current
				cur.current = into
				if instance {
					cur.slots[pathKey(into)] = slot{owner: path, receiver: into, openID: el.Container.OpenID}
				}
				if err := x.run(ctx, cur, instr.Children, scope); err != nil {
					return err
				}
				cur.current = saved
			}
			if err := cur.open(d, instr.Line, &el, path, instance); err != nil {
				return err
			}
		}
	}
	return nil
}

// call executes one invocation and returns its element together with the
// component that was invoked.
func (x *executor) call(ctx context.Context, child *ChildComponent, fr frame) (Element, *Component, error) {
	d, line := x.doc, child.Line
	rootName, props := child.Root, child.Properties
	if child.Reference != nil {
		pv, err := child.Reference.Substitute(d, fr.scope, line)
		if err != nil {
			return Element{}, nil, err
		}
		v, err := pv.Resolve(d, Scope{}, line)
		if err != nil {
			return Element{}, nil, err
		}
		if v.IsNull() {
			return NullElement(), nil, nil
		}
		v = v.Unwrap()
		if v.Type != ValueUI {
			return Element{}, nil, ftderr.TypeMismatchf(d.ID, line, "%s is not a component", child.Reference.Name)
		}
		rootName = v.Name
		props = make(map[string]Property, len(v.UIData)+len(child.Properties))
		for k, p := range v.UIData {
			props[k] = p
		}
		for k, p := range child.Properties {
			props[k] = p
		}
	}
	comp, err := d.GetComponent(line, rootName)
	if err != nil {
		return Element{}, nil, err
	}

	visible := true
	var cond *Condition
	if child.Condition != nil {
		b, err := child.Condition.Substitute(d, fr.scope, line)
		if err != nil {
			return Element{}, nil, err
		}
		ok, err := b.Eval(d, Scope{}, line)
		if err != nil {
			return Element{}, nil, err
		}
		if !ok && b.IsConstant() && b.SetNull(d, line) {
			return NullElement(), comp, nil
		}
		visible = ok
		if cond, err = b.ToCondition(d, line); err != nil {
			return Element{}, nil, err
		}
	}

	args, forward, resolved, err := x.bind(comp, props, fr.scope, line)
	if err != nil {
		return Element{}, nil, err
	}
	styles := make(map[string]markupStyle, len(child.Markups)+len(fr.markups))
	for name, m := range child.Markups {
		styles[name] = markupStyle{child: m, scope: fr.scope}
	}
	for name, s := range fr.markups {
		styles[name] = s
	}

	var el Element
	if comp.Kernel {
		el, err = x.buildKernel(ctx, comp, args, resolved, styles, line)
	} else {
		el, err = x.instantiate(ctx, comp, args, forward, styles, fr.path, line)
	}
	if err != nil || el.IsNull() {
		return el, comp, err
	}

	if !visible {
		el.Common.IsNotVisible = true
	}
	if cond != nil {
		el.Common.Condition = cond
	}
	for _, spec := range child.Events {
		ev, err := spec.toEvent(d, fr.scope)
		if err != nil {
			return Element{}, nil, err
		}
		el.Common.Events = append(el.Common.Events, ev)
	}
	return el, comp, nil
}

// bind evaluates the properties of an invocation of comp under scope.
// Properties for arguments comp does not declare are returned substituted
// in forward, to be applied to comp's root.
func (x *executor) bind(comp *Component, props map[string]Property, scope Scope, line int) (args map[string]Binding, forward, resolved map[string]Property, err error) {
	d := x.doc
	args = make(map[string]Binding, len(comp.Arguments))
	forward = make(map[string]Property)
	resolved = make(map[string]Property, len(props))
	for _, name := range sortedKeys(props) {
		if name == loopVar {
			continue
		}
		p, err := props[name].Substitute(d, scope, line)
		if err != nil {
			return nil, nil, nil, err
		}
		if _, declared := comp.Arguments[name]; !declared {
			forward[name] = p
			continue
		}
		resolved[name] = p
		pv, err := p.Eval(d, Scope{}, line)
		if err != nil {
			return nil, nil, nil, err
		}
		v, ref, err := pv.ResolveWithRef(d, Scope{}, line)
		if err != nil {
			return nil, nil, nil, err
		}
		args[name] = Binding{Value: v, Reference: ref}
	}
	for name, k := range comp.Arguments {
		if _, ok := args[name]; !ok {
			args[name] = Binding{Value: NoneValue(k)}
		}
	}
	return args, forward, resolved, nil
}

func (x *executor) buildKernel(ctx context.Context, comp *Component, args map[string]Binding, resolved map[string]Property, styles map[string]markupStyle, line int) (Element, error) {
	d := x.doc
	spec, ok := x.kernels.Get(strings.TrimPrefix(comp.FullName, KernelDoc+"#"))
	if !ok {
		return Element{}, d.notFound(line, "kernel %q is not registered", comp.FullName)
	}
	el, err := spec.Build(&kernelInput{doc: d, args: args, line: line, used: make(map[string]bool)})
	if err != nil || el.IsNull() {
		return el, err
	}
	if spec.Reference != "" {
		el.Common.Reference = args[spec.Reference].Reference
	}
	for _, name := range sortedKeys(resolved) {
		ca, err := x.conditionalAttribute(resolved[name], line)
		if err != nil {
			return Element{}, err
		}
		if ca == nil {
			continue
		}
		if el.Common.ConditionalAttributes == nil {
			el.Common.ConditionalAttributes = make(map[string]ConditionalAttribute)
		}
		el.Common.ConditionalAttributes[name] = *ca
	}
	if el.Type == ElementText || el.Type == ElementTextBlock {
		if err := x.applyMarkup(ctx, &el, styles, line); err != nil {
			return Element{}, err
		}
	}
	return el, nil
}

func (x *executor) conditionalAttribute(p Property, line int) (*ConditionalAttribute, error) {
	d := x.doc
	ca := &ConditionalAttribute{}
	for _, c := range p.Conditions {
		cond, err := c.Condition.ToCondition(d, line)
		if err != nil {
			return nil, err
		}
		if cond == nil {
			continue
		}
		v, err := c.Value.Resolve(d, Scope{}, line)
		if err != nil {
			return nil, err
		}
		ca.Conditions = append(ca.Conditions, ConditionWithValue{Condition: *cond, Value: stringOrNil(v)})
	}
	if len(ca.Conditions) == 0 {
		return nil, nil
	}
	if p.Default != nil {
		v, err := p.Default.Resolve(d, Scope{}, line)
		if err != nil {
			return nil, err
		}
		ca.Default = stringOrNil(v)
	}
	return ca, nil
}

func stringOrNil(v Value) *string {
	if s, ok := v.ToString(); ok {
		return &s
	}
	return nil
}

// instantiate executes a user component: locals are created for this
// instance, the root is invoked with the component's properties and the
// component's instructions fill the root.
func (x *executor) instantiate(ctx context.Context, comp *Component, args map[string]Binding, forward map[string]Property, styles map[string]markupStyle, path []int, line int) (Element, error) {
	d := x.doc
	scope := Scope{Args: make(map[string]Binding, len(args)+len(comp.Locals))}
	for name, b := range args {
		scope.Args[name] = b
	}

	locals := make(map[string]string, len(comp.Locals))
	for _, name := range sortedKeys(comp.Locals) {
		k := comp.Locals[name]
		v, err := x.localValue(comp, name, k, scope, line)
		if err != nil {
			return Element{}, err
		}
		key := LocalKey(name, path)
		d.Locals[key] = &Variable{Name: key, Kind: k, Value: LiteralPV(v), Line: line}
		scope.Args["@"+name] = Binding{Value: v, Reference: key}
		locals[name] = key
	}

	invocation := make(map[string]Value, len(comp.Arguments))
	for name := range comp.Arguments {
		invocation[name] = args[name].Value
	}
	comp.Invocations = append(comp.Invocations, invocation)

	props := make(map[string]Property, len(comp.Properties)+len(forward))
	for name, p := range comp.Properties {
		props[name] = p
	}
	for name, p := range forward {
		props[name] = p
	}
	root := &ChildComponent{
		Root:       comp.Root,
		Properties: props,
		Condition:  comp.Condition,
		Events:     comp.Events,
		Markups:    comp.Markups,
		Line:       comp.Line,
	}
	el, _, err := x.call(ctx, root, frame{scope: scope, path: path, markups: styles})
	if err != nil || el.IsNull() {
		return el, err
	}
	if len(locals) > 0 {
		if el.Common.Locals == nil {
			el.Common.Locals = make(map[string]string, len(locals))
		}
		for name, key := range locals {
			el.Common.Locals[name] = key
		}
	}
	if len(comp.Instructions) > 0 {
		if el.Container == nil {
			return Element{}, ftderr.Forbiddenf(d.ID, line, "%s has children but its root %s is not a container", comp.FullName, el.Type)
		}
		cur := newCursor(&el, path)
		if err := x.run(ctx, cur, comp.Instructions, scope); err != nil {
			return Element{}, err
		}
		cur.syncExternal()
	}
	return el, nil
}

func (x *executor) localValue(comp *Component, name string, k Kind, scope Scope, line int) (Value, error) {
	d := x.doc
	def := k.GetDefault()
	if def == nil {
		if k.IsOptional() || k.IsList() {
			return d.defaultInstance(k, line)
		}
		return Value{}, ftderr.MissingDataf(d.ID, line, "local %q of %s needs a default", name, comp.FullName)
	}
	kinds := make(argKinds, len(comp.Arguments))
	for arg, ak := range comp.Arguments {
		kinds[arg] = ak
	}
	pv, err := d.valueFromString(*def, k, SourceDefault, exprContext{args: kinds, line: line})
	if err != nil {
		return Value{}, err
	}
	if pv, err = pv.Substitute(d, scope, line); err != nil {
		return Value{}, err
	}
	return pv.Resolve(d, Scope{}, line)
}

// loop expands a `$loop$` invocation, one element per list item. An empty
// list read from the bag yields a single dummy element built from a default
// item, which a runtime can use as a template.
func (x *executor) loop(ctx context.Context, child *ChildComponent, scope Scope, next []int) ([]Element, error) {
	d, line := x.doc, child.Line
	lp := child.Properties[loopVar]
	if lp.Default == nil {
		return nil, ftderr.MissingDataf(d.ID, line, "`$loop$` has no source")
	}
	src, err := lp.Default.Substitute(d, scope, line)
	if err != nil {
		return nil, err
	}
	list, ref, err := src.ResolveWithRef(d, Scope{}, line)
	if err != nil {
		return nil, err
	}
	list = list.Unwrap()
	if !list.IsNull() && list.Type != ValueList {
		return nil, ftderr.TypeMismatchf(d.ID, line, "`$loop$` source is not a list")
	}

	base := *child
	base.IsRecursive = false
	base.Properties = make(map[string]Property, len(child.Properties))
	for name, p := range child.Properties {
		if name != loopVar {
			base.Properties[name] = p
		}
	}

	var out []Element
	for i, item := range list.List {
		v, itemRef, err := item.ResolveWithRef(d, Scope{}, line)
		if err != nil {
			return nil, err
		}
		if ref != "" {
			itemRef = ref + "." + strconv.Itoa(i)
		}
		path := append([]int(nil), next...)
		path[len(path)-1] += i
		el, _, err := x.call(ctx, &base, frame{scope: scope.With(loopVar, Binding{Value: v, Reference: itemRef}), path: path})
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	if len(list.List) == 0 && src.Type == PVReference {
		v, err := d.defaultInstance(src.GetKind().ListItem(), line)
		if err != nil {
			return nil, err
		}
		el, _, err := x.call(ctx, &base, frame{scope: scope.With(loopVar, Binding{Value: v}), path: next})
		if err != nil {
			return nil, err
		}
		if !el.IsNull() {
			el.Common.IsDummy = true
		}
		out = append(out, el)
	}
	return out, nil
}

// defaultInstance builds the zero value of k.
func (d *Doc) defaultInstance(k Kind, line int) (Value, error) {
	if def := k.GetDefault(); def != nil {
		pv, err := d.valueFromString(*def, k, SourceDefault, exprContext{line: line})
		if err != nil {
			return Value{}, err
		}
		return pv.Resolve(d, Scope{}, line)
	}
	if k.IsOptional() {
		return NoneValue(k.Inner()), nil
	}
	switch k.Type {
	case KindString:
		return StringValue("", SourceDefault), nil
	case KindInteger:
		return IntegerValue(0), nil
	case KindDecimal:
		return DecimalValue(0), nil
	case KindBoolean:
		return BooleanValue(false), nil
	case KindList:
		return ListValue(*k.Of, nil), nil
	case KindMap:
		return MapValue(*k.Of, map[string]Value{}), nil
	case KindObject:
		return ObjectValue(map[string]PropertyValue{}), nil
	case KindRecord, KindOrTypeWithVariant:
		name := k.Name
		if k.Type == KindOrTypeWithVariant {
			name += "." + k.Variant
		}
		rec, err := d.GetRecord(line, name)
		if err != nil {
			return Value{}, err
		}
		fields := make(map[string]PropertyValue, len(rec.Fields))
		for field, fk := range rec.Fields {
			fv, err := d.defaultInstance(fk, line)
			if err != nil {
				return Value{}, err
			}
			fields[field] = LiteralPV(fv)
		}
		if k.Type == KindOrTypeWithVariant {
			return OrTypeValue(k.Name, k.Variant, fields), nil
		}
		return RecordValue(k.Name, fields), nil
	}
	return NoneValue(k), nil
}
