// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package section

import (
	"strings"

	"github.com/specialistvlad/ftdgo/internal/ftderr"
)

type phase int

const (
	phaseHeader phase = iota
	phaseBody
)

// node accumulates a section or subsection while lines are consumed.
type node struct {
	name        string
	caption     *string
	header      Header
	bodyLines   []string
	bodyLine    int
	commented   bool
	line        int
	phase       phase
	isSub       bool
	subSections SubSections
}

type parser struct {
	docID    string
	sections []Section
	section  *node
	sub      *node
}

// Parse splits source into sections. docID is used for error locations.
func Parse(source, docID string) ([]Section, error) {
	p := &parser{docID: docID}
	for i, raw := range strings.Split(source, "\n") {
		if err := p.line(i+1, strings.TrimSuffix(raw, "\r")); err != nil {
			return nil, err
		}
	}
	if err := p.flushSection(); err != nil {
		return nil, err
	}
	return p.sections, nil
}

func (p *parser) current() *node {
	if p.sub != nil {
		return p.sub
	}
	return p.section
}

func (p *parser) line(lineNo int, line string) error {
	if strings.HasPrefix(line, ";") {
		return nil
	}

	trimmed := strings.TrimSpace(line)
	switch trimmed {
	case "/--", "/---":
		return ftderr.Parsef(p.docID, lineNo, "comment marker %q without a section", trimmed)
	case "--", "---":
		return ftderr.Parsef(p.docID, lineNo, "section marker %q without a name", trimmed)
	}

	if marker, commented, rest, ok := splitMarker(line); ok {
		name, caption, err := p.nameAndCaption(lineNo, rest)
		if err != nil {
			return err
		}
		n := &node{name: name, caption: caption, commented: commented, line: lineNo}
		if marker == "---" {
			if p.section == nil {
				return ftderr.Parsef(p.docID, lineNo, "subsection %q before any section", name)
			}
			p.flushSub()
			n.isSub = true
			p.sub = n
			return nil
		}
		if err := p.flushSection(); err != nil {
			return err
		}
		p.section = n
		return nil
	}

	cur := p.current()
	if cur == nil {
		if trimmed == "" {
			return nil
		}
		return ftderr.Parsef(p.docID, lineNo, "content %q before the first section", trimmed)
	}

	if cur.phase == phaseHeader {
		if trimmed == "" {
			cur.phase = phaseBody
			return nil
		}
		kv, err := p.header(lineNo, trimmed)
		if err != nil {
			return err
		}
		cur.header = append(cur.header, kv)
		return nil
	}

	if len(cur.bodyLines) == 0 {
		if trimmed == "" {
			return nil
		}
		cur.bodyLine = lineNo
	}
	cur.bodyLines = append(cur.bodyLines, line)
	return nil
}

// splitMarker recognises `-- `, `--- `, `/-- ` and `/--- ` prefixes.
func splitMarker(line string) (marker string, commented bool, rest string, ok bool) {
	s := line
	if strings.HasPrefix(s, "/") {
		commented = true
		s = s[1:]
	}
	switch {
	case strings.HasPrefix(s, "--- "):
		return "---", commented, s[4:], true
	case strings.HasPrefix(s, "-- "):
		return "--", commented, s[3:], true
	}
	return "", false, "", false
}

func (p *parser) nameAndCaption(lineNo int, rest string) (string, *string, error) {
	name, caption, found := strings.Cut(rest, ":")
	if !found {
		return "", nil, ftderr.Parsef(p.docID, lineNo, "section %q has no colon", strings.TrimSpace(rest))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, ftderr.Parsef(p.docID, lineNo, "section name is empty")
	}
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return name, nil, nil
	}
	return name, &caption, nil
}

func (p *parser) header(lineNo int, line string) (KV, error) {
	kv := KV{Line: lineNo}
	if strings.HasPrefix(line, "/") {
		kv.IsCommented = true
		line = line[1:]
	}
	key, value, found := strings.Cut(line, ":")
	if !found {
		return kv, ftderr.Parsef(p.docID, lineNo, "header %q has no colon", line)
	}
	kv.Key = strings.TrimSpace(key)
	kv.Value = strings.TrimSpace(value)
	if kv.Key == "" {
		return kv, ftderr.Parsef(p.docID, lineNo, "header has an empty key")
	}
	return kv, nil
}

func (n *node) body() *Body {
	lines := n.bodyLines
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil
	}
	b := &Body{Line: n.bodyLine}
	out := make([]string, len(lines))
	for i, l := range lines {
		switch {
		case i == 0 && strings.HasPrefix(l, "/"):
			b.IsCommented = true
			l = l[1:]
		case strings.HasPrefix(l, `\`):
			l = l[1:]
		}
		out[i] = l
	}
	b.Value = strings.Join(out, "\n")
	return b
}

func (p *parser) flushSub() {
	if p.sub == nil {
		return
	}
	p.section.subSections = append(p.section.subSections, SubSection{
		Name:        p.sub.name,
		Caption:     p.sub.caption,
		Header:      p.sub.header,
		Body:        p.sub.body(),
		IsCommented: p.sub.commented,
		Line:        p.sub.line,
	})
	p.sub = nil
}

func (p *parser) flushSection() error {
	if p.section == nil {
		return nil
	}
	p.flushSub()
	p.sections = append(p.sections, Section{
		Name:        p.section.name,
		Caption:     p.section.caption,
		Header:      p.section.header,
		Body:        p.section.body(),
		SubSections: p.section.subSections,
		IsCommented: p.section.commented,
		Line:        p.section.line,
	})
	p.section = nil
	return nil
}
