// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"context"
	"strings"

	"github.com/specialistvlad/ftdgo/internal/ctxlog"
	"github.com/specialistvlad/ftdgo/internal/ftderr"
)

// markupNode is one parsed region of `{style: text}` markup. Plain text
// nodes have no style.
type markupNode struct {
	style    string
	text     string
	children []markupNode
}

func (n markupNode) plain() string {
	if n.style == "" {
		return n.text
	}
	return plainText(n.children)
}

func plainText(nodes []markupNode) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(n.plain())
	}
	return b.String()
}

func hasStyle(nodes []markupNode) bool {
	for _, n := range nodes {
		if n.style != "" {
			return true
		}
	}
	return false
}

type markupParser struct {
	docID string
	line  int
	s     string
	i     int
}

// parseMarkup splits text into plain and styled regions. `\{` and `\}`
// escape literal braces; a `{` not followed by `name:` is literal as well.
func parseMarkup(docID string, line int, s string) ([]markupNode, error) {
	p := &markupParser{docID: docID, line: line, s: s}
	nodes, err := p.parse(0)
	if err != nil {
		return nil, err
	}
	if p.i < len(p.s) {
		return nil, ftderr.Parsef(docID, line, "unbalanced `}` in markup %q", s)
	}
	return nodes, nil
}

func (p *markupParser) parse(depth int) ([]markupNode, error) {
	var nodes []markupNode
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			nodes = append(nodes, markupNode{text: buf.String()})
			buf.Reset()
		}
	}
	// literal counts open braces that start no region; their closing braces
	// are text too.
	literal := 0
	for p.i < len(p.s) {
		ch := p.s[p.i]
		switch {
		case ch == '\\' && p.i+1 < len(p.s) && (p.s[p.i+1] == '{' || p.s[p.i+1] == '}'):
			buf.WriteByte(p.s[p.i+1])
			p.i += 2
		case ch == '{':
			style, next, ok := p.styleAt(p.i + 1)
			if !ok {
				literal++
				buf.WriteByte(ch)
				p.i++
				continue
			}
			flush()
			p.i = next
			children, err := p.parse(depth + 1)
			if err != nil {
				return nil, err
			}
			if p.i >= len(p.s) || p.s[p.i] != '}' {
				return nil, ftderr.Parsef(p.docID, p.line, "unbalanced `{` in markup %q", p.s)
			}
			p.i++
			nodes = append(nodes, markupNode{style: style, children: children})
		case ch == '}' && literal > 0:
			literal--
			buf.WriteByte(ch)
			p.i++
		case ch == '}':
			flush()
			return nodes, nil
		default:
			buf.WriteByte(ch)
			p.i++
		}
	}
	flush()
	return nodes, nil
}

// styleAt reads `name:` starting at i, plus one optional space.
func (p *markupParser) styleAt(i int) (style string, next int, ok bool) {
	j := i
	for j < len(p.s) && isStyleChar(p.s[j]) {
		j++
	}
	if j == i || j >= len(p.s) || p.s[j] != ':' {
		return "", 0, false
	}
	next = j + 1
	if next < len(p.s) && p.s[next] == ' ' {
		next++
	}
	return p.s[i:j], next, true
}

func isStyleChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '-' || c == '_' || c == '.' || c == '#'
}

// applyMarkup parses the text of el and renders its styled regions. el
// becomes a Markup element when at least one region is styled.
func (x *executor) applyMarkup(ctx context.Context, el *Element, styles map[string]markupStyle, line int) error {
	if !strings.ContainsAny(el.Text.Text, "{}\\") {
		return nil
	}
	nodes, err := parseMarkup(x.doc.ID, line, el.Text.Text)
	if err != nil {
		return err
	}
	el.Text.Text = plainText(nodes)
	if !hasStyle(nodes) {
		return nil
	}
	markups, err := x.markups(ctx, nodes, styles, line)
	if err != nil {
		return err
	}
	el.Type = ElementMarkup
	el.Text.Markups = markups
	return nil
}

func (x *executor) markups(ctx context.Context, nodes []markupNode, styles map[string]markupStyle, line int) ([]Markup, error) {
	out := make([]Markup, 0, len(nodes))
	for _, n := range nodes {
		if n.style == "" {
			out = append(out, Markup{Text: n.text})
			continue
		}
		m := Markup{Text: n.plain()}
		el, err := x.styleElement(ctx, n.style, m.Text, styles, line)
		if err != nil {
			return nil, err
		}
		m.Element = el
		if hasStyle(n.children) {
			if m.Children, err = x.markups(ctx, n.children, styles, line); err != nil {
				return nil, err
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// styleElement renders text with the named style: a markup style of the
// enclosing invocation first, then any component in the bag. Unknown styles
// leave the region as plain text.
func (x *executor) styleElement(ctx context.Context, style, text string, styles map[string]markupStyle, line int) (*Element, error) {
	d := x.doc
	var base *ChildComponent
	var scope Scope
	if s, ok := styles[style]; ok {
		base, scope = s.child, s.scope
	} else if comp, err := d.GetComponent(line, style); err == nil {
		base = &ChildComponent{Root: comp.FullName, Properties: map[string]Property{}, Line: line}
	} else {
		ctxlog.FromContext(ctx).Debug("Unknown markup style, keeping plain text.", "style", style, "doc", d.ID, "line", line)
		return nil, nil
	}

	comp, err := d.GetComponent(line, base.Root)
	if err != nil {
		return nil, err
	}
	arg, ok := captionArgument(comp)
	if !ok && d.isTextComponent(line, comp) {
		arg, ok = "text", true
	}
	if !ok {
		return nil, ftderr.Forbiddenf(d.ID, line, "markup style %q: %s takes no caption", style, comp.FullName)
	}
	child := *base
	child.Properties = make(map[string]Property, len(base.Properties)+1)
	for name, p := range base.Properties {
		child.Properties[name] = p
	}
	text = strings.TrimSpace(text)
	child.Properties[arg] = Property{Default: &PropertyValue{Type: PVValue, Value: StringValue(text, SourceCaption)}}

	el, _, err := x.call(ctx, &child, frame{scope: scope})
	if err != nil {
		return nil, err
	}
	return &el, nil
}

// captionArgument finds the argument of comp that takes a caption. Text
// roots without one receive the region text directly.
func captionArgument(comp *Component) (string, bool) {
	args := comp.invocationArguments()
	for _, name := range sortedKeys(args) {
		if args[name].IsCaption() && args[name].IsString() {
			return name, true
		}
	}
	return "", false
}
