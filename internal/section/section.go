// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package section

import (
	"strings"

	"github.com/specialistvlad/ftdgo/internal/ftderr"
)

// Body is the free text trailing a section's headers.
type Body struct {
	Line        int
	Value       string
	IsCommented bool
}

// Section is a top-level `-- name: caption` block.
type Section struct {
	Name        string
	Caption     *string
	Header      Header
	Body        *Body
	SubSections SubSections
	IsCommented bool
	Line        int
}

// SubSection is a `--- name: caption` block nested in a section.
type SubSection struct {
	Name        string
	Caption     *string
	Header      Header
	Body        *Body
	IsCommented bool
	Line        int
}

// SubSections is the ordered list of a section's subsections.
type SubSections []SubSection

// ByName returns the single subsection with the given name.
func (s SubSections) ByName(docID string, line int, name string) (*SubSection, error) {
	var found *SubSection
	for i := range s {
		if s[i].Name != name {
			continue
		}
		if found != nil {
			return nil, ftderr.MoreThanOnef(docID, s[i].Line, "more than one subsection named %q", name)
		}
		found = &s[i]
	}
	if found == nil {
		return nil, ftderr.NotFoundf(docID, line, "subsection %q not found", name)
	}
	return found, nil
}

// CaptionOr returns the caption, or def when there is none.
func (s *Section) CaptionOr(def string) string {
	if s.Caption == nil {
		return def
	}
	return *s.Caption
}

// BodyText returns the body value, or "" when there is none.
func (s *Section) BodyText() string {
	if s.Body == nil {
		return ""
	}
	return s.Body.Value
}

// AsSubSection views a section as a subsection, dropping its children.
func (s *Section) AsSubSection() SubSection {
	return SubSection{
		Name:        s.Name,
		Caption:     s.Caption,
		Header:      s.Header,
		Body:        s.Body,
		IsCommented: s.IsCommented,
		Line:        s.Line,
	}
}

// AsSection views a subsection as a section without children.
func (s *SubSection) AsSection() Section {
	return Section{
		Name:        s.Name,
		Caption:     s.Caption,
		Header:      s.Header,
		Body:        s.Body,
		IsCommented: s.IsCommented,
		Line:        s.Line,
	}
}

// RemoveComments drops commented sections, subsections, headers and bodies.
func RemoveComments(sections []Section) []Section {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		if s.IsCommented {
			continue
		}
		s.Header = s.Header.uncommented()
		if s.Body != nil && s.Body.IsCommented {
			s.Body = nil
		}
		var subs SubSections
		for _, sub := range s.SubSections {
			if sub.IsCommented {
				continue
			}
			sub.Header = sub.Header.uncommented()
			if sub.Body != nil && sub.Body.IsCommented {
				sub.Body = nil
			}
			subs = append(subs, sub)
		}
		s.SubSections = subs
		out = append(out, s)
	}
	return out
}

// String renders the section back to its textual form.
func (s *Section) String() string {
	var sb strings.Builder
	writeNode(&sb, "--", s.IsCommented, s.Name, s.Caption, s.Header, s.Body)
	for _, sub := range s.SubSections {
		sb.WriteString("\n")
		writeNode(&sb, "---", sub.IsCommented, sub.Name, sub.Caption, sub.Header, sub.Body)
	}
	return sb.String()
}

// String renders the subsection back to its textual form.
func (s *SubSection) String() string {
	var sb strings.Builder
	writeNode(&sb, "---", s.IsCommented, s.Name, s.Caption, s.Header, s.Body)
	return sb.String()
}

// Render joins sections into a document.
func Render(sections []Section) string {
	parts := make([]string, 0, len(sections))
	for i := range sections {
		parts = append(parts, sections[i].String())
	}
	return strings.Join(parts, "\n")
}

func writeNode(sb *strings.Builder, marker string, commented bool, name string, caption *string, header Header, body *Body) {
	if commented {
		sb.WriteString("/")
	}
	sb.WriteString(marker)
	sb.WriteString(" ")
	sb.WriteString(name)
	sb.WriteString(":")
	if caption != nil && *caption != "" {
		sb.WriteString(" ")
		sb.WriteString(*caption)
	}
	sb.WriteString("\n")
	for _, kv := range header {
		if kv.IsCommented {
			sb.WriteString("/")
		}
		sb.WriteString(kv.Key)
		sb.WriteString(":")
		if kv.Value != "" {
			sb.WriteString(" ")
			sb.WriteString(kv.Value)
		}
		sb.WriteString("\n")
	}
	if body == nil {
		return
	}
	sb.WriteString("\n")
	for i, line := range strings.Split(body.Value, "\n") {
		if i == 0 && body.IsCommented {
			sb.WriteString("/")
		} else if needsEscape(line) {
			sb.WriteString(`\`)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}

func needsEscape(line string) bool {
	return strings.HasPrefix(line, `\`) ||
		strings.HasPrefix(line, "--") ||
		strings.HasPrefix(line, ";") ||
		strings.HasPrefix(line, "/")
}
