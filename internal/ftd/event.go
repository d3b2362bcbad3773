// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"strings"

	"github.com/specialistvlad/ftdgo/internal/ftderr"
)

// eventNames are the accepted `$on-<event>$` names. The hyphenated mouse
// events are aliases of the dom spelling.
var eventNames = map[string]bool{
	"click":         true,
	"clickoutside":  true,
	"click-outside": true,
	"change":        true,
	"input":         true,
	"focus":         true,
	"blur":          true,
	"mouseenter":    true,
	"mouseleave":    true,
	"mouse-enter":   true,
	"mouse-leave":   true,
	"load":          true,
}

// Action is what a runtime does when an event fires. Target is the bag path
// or local key the action mutates.
type Action struct {
	Action     string              `json:"action"`
	Target     string              `json:"target,omitempty"`
	Parameters map[string][]string `json:"parameters,omitempty"`
}

// Event binds an action to an event name on an element.
type Event struct {
	Name   string `json:"name"`
	Action Action `json:"action"`
}

// EventSpec is the compiled form of a `$on-<event>$: <verb> <target> ...`
// header. Target and Value may still reference component arguments.
type EventSpec struct {
	Name       string
	Verb       string
	Target     *PropertyValue
	Value      *PropertyValue
	Parameters map[string][]string
	Line       int
}

// eventName extracts `click` from a `$on-click$` header key.
func eventName(key string) (string, bool) {
	if !strings.HasPrefix(key, "$on-") || !strings.HasSuffix(key, "$") || len(key) < 6 {
		return "", false
	}
	return key[len("$on-") : len(key)-1], true
}

func (d *Doc) eventFromHeader(name, value string, ec exprContext) (EventSpec, error) {
	if !eventNames[name] {
		return EventSpec{}, ftderr.Parsef(d.ID, ec.line, "unknown event %q", name)
	}
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return EventSpec{}, ftderr.Parsef(d.ID, ec.line, "event %q has no action", name)
	}
	spec := EventSpec{Name: name, Verb: fields[0], Line: ec.line}
	args := fields[1:]

	target := func(check func(Kind) bool, want string) error {
		if len(args) == 0 || !strings.HasPrefix(args[0], "$") {
			return ftderr.Parsef(d.ID, ec.line, "%s needs a `$variable` target", spec.Verb)
		}
		pv, err := d.resolveReference(args[0][1:], ec)
		if err != nil {
			return err
		}
		if check != nil && !check(pv.GetKind()) {
			return ftderr.TypeMismatchf(d.ID, ec.line, "%s target %s is %s, expected %s", spec.Verb, args[0], pv.GetKind(), want)
		}
		spec.Target = &pv
		args = args[1:]
		return nil
	}

	switch spec.Verb {
	case "toggle":
		if err := target(Kind.IsBoolean, "boolean"); err != nil {
			return EventSpec{}, err
		}
	case "increment", "decrement":
		if err := target(Kind.IsInteger, "integer"); err != nil {
			return EventSpec{}, err
		}
		params, err := d.stepParameters(args, ec)
		if err != nil {
			return EventSpec{}, err
		}
		spec.Parameters = params
		args = nil
	case "set-value", "insert":
		check, want := (func(Kind) bool)(nil), ""
		if spec.Verb == "insert" {
			check, want = Kind.IsList, "a list"
		}
		if err := target(check, want); err != nil {
			return EventSpec{}, err
		}
		if len(args) == 0 {
			return EventSpec{}, ftderr.MissingDataf(d.ID, ec.line, "%s needs a value", spec.Verb)
		}
		k := spec.Target.GetKind()
		if spec.Verb == "insert" {
			k = k.ListItem()
		}
		pv, err := d.valueFromString(strings.Join(args, " "), k, SourceHeader, ec)
		if err != nil {
			return EventSpec{}, err
		}
		spec.Value = &pv
		args = nil
	case "clear":
		if err := target(func(k Kind) bool { return k.IsList() || k.IsOptional() }, "a list or optional"); err != nil {
			return EventSpec{}, err
		}
	case "message-host":
		if len(args) > 0 {
			spec.Parameters = map[string][]string{"data": args}
		}
		args = nil
	case "stop-propagation", "prevent-default":
	default:
		return EventSpec{}, ftderr.Parsef(d.ID, ec.line, "unknown action %q", spec.Verb)
	}
	if len(args) > 0 {
		return EventSpec{}, ftderr.Parsef(d.ID, ec.line, "unexpected arguments %q for %s", strings.Join(args, " "), spec.Verb)
	}
	return spec, nil
}

// stepParameters parses `by <n>` and `clamp <min> <max>` in any order.
func (d *Doc) stepParameters(args []string, ec exprContext) (map[string][]string, error) {
	params := make(map[string][]string)
	for len(args) > 0 {
		n := 0
		switch args[0] {
		case "by":
			n = 1
		case "clamp":
			n = 2
		default:
			return nil, ftderr.Parsef(d.ID, ec.line, "unexpected %q, expected `by` or `clamp`", args[0])
		}
		if len(args) < n+1 {
			return nil, ftderr.MissingDataf(d.ID, ec.line, "%s needs %d value(s)", args[0], n)
		}
		for _, raw := range args[1 : n+1] {
			if _, err := d.parseLiteral(raw, IntegerKind(), SourceHeader, ec.line); err != nil {
				return nil, err
			}
		}
		params[args[0]] = append([]string(nil), args[1:n+1]...)
		args = args[n+1:]
	}
	if len(params) == 0 {
		return nil, nil
	}
	return params, nil
}

// toEvent binds the spec to a scope, producing the runtime form.
func (e EventSpec) toEvent(d *Doc, s Scope) (Event, error) {
	ev := Event{Name: e.Name, Action: Action{Action: e.Verb}}
	if e.Target != nil {
		pv, err := e.Target.Substitute(d, s, e.Line)
		if err != nil {
			return Event{}, err
		}
		if pv.Type != PVReference {
			return Event{}, ftderr.Forbiddenf(d.ID, e.Line, "%s target %q is not bound to a variable", e.Verb, e.Target.Name)
		}
		ev.Action.Target = pv.Name
	}
	if len(e.Parameters) > 0 || e.Value != nil {
		ev.Action.Parameters = make(map[string][]string, len(e.Parameters)+1)
		for k, v := range e.Parameters {
			ev.Action.Parameters[k] = v
		}
	}
	if e.Value != nil {
		pv, err := e.Value.Substitute(d, s, e.Line)
		if err != nil {
			return Event{}, err
		}
		if pv.Type == PVReference {
			ev.Action.Parameters["value"] = []string{"$" + pv.Name}
		} else {
			str, ok := pv.Value.ToString()
			if !ok {
				return Event{}, ftderr.TypeMismatchf(d.ID, e.Line, "%s value must be a scalar", e.Verb)
			}
			ev.Action.Parameters["value"] = []string{str}
		}
	}
	return ev, nil
}
