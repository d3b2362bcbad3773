// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package section

import (
	"strconv"
	"strings"

	"github.com/specialistvlad/ftdgo/internal/ftderr"
)

// KV is a single `key: value` header line.
type KV struct {
	Line        int
	Key         string
	Value       string
	IsCommented bool
}

// Header is an ordered list of header lines. Keys may repeat, which is how
// `key if <expr>: value` lines accumulate several conditional values.
type Header []KV

// ConditionalValue is one value of a possibly conditional header.
type ConditionalValue struct {
	Line      int
	Value     string
	Condition *string
}

// SplitCondition splits `name if expr` into the name and the expression.
func SplitCondition(key string) (string, *string) {
	name, expr, found := strings.Cut(key, " if ")
	if !found {
		return strings.TrimSpace(key), nil
	}
	expr = strings.TrimSpace(expr)
	return strings.TrimSpace(name), &expr
}

// StrOptional returns the last value of key.
func (h Header) StrOptional(key string) (string, bool) {
	for i := len(h) - 1; i >= 0; i-- {
		if h[i].Key == key {
			return h[i].Value, true
		}
	}
	return "", false
}

// Str returns the last value of key or a NotFound error.
func (h Header) Str(docID string, line int, key string) (string, error) {
	if v, ok := h.StrOptional(key); ok {
		return v, nil
	}
	return "", ftderr.NotFoundf(docID, line, "header %q not found", key)
}

// Bool parses the value of key as a boolean.
func (h Header) Bool(docID string, line int, key string) (bool, error) {
	v, err := h.Str(docID, line, key)
	if err != nil {
		return false, err
	}
	b, perr := strconv.ParseBool(v)
	if perr != nil {
		return false, ftderr.Parsef(docID, line, "header %q: %q is not a boolean", key, v)
	}
	return b, nil
}

// BoolWithDefault is Bool returning def when the key is absent.
func (h Header) BoolWithDefault(docID string, line int, key string, def bool) (bool, error) {
	if _, ok := h.StrOptional(key); !ok {
		return def, nil
	}
	return h.Bool(docID, line, key)
}

// I64 parses the value of key as an integer.
func (h Header) I64(docID string, line int, key string) (int64, error) {
	v, err := h.Str(docID, line, key)
	if err != nil {
		return 0, err
	}
	i, perr := strconv.ParseInt(v, 10, 64)
	if perr != nil {
		return 0, ftderr.Parsef(docID, line, "header %q: %q is not an integer", key, v)
	}
	return i, nil
}

// ConditionalStr returns every value given to key, either plainly or as
// `key if <expr>`, in source order.
func (h Header) ConditionalStr(key string) []ConditionalValue {
	var out []ConditionalValue
	for _, kv := range h {
		name, cond := SplitCondition(kv.Key)
		if name != key {
			continue
		}
		out = append(out, ConditionalValue{Line: kv.Line, Value: kv.Value, Condition: cond})
	}
	return out
}

// Without returns a copy of the header with every line for key removed.
func (h Header) Without(key string) Header {
	out := make(Header, 0, len(h))
	for _, kv := range h {
		if kv.Key != key {
			out = append(out, kv)
		}
	}
	return out
}

// Add appends a header line.
func (h *Header) Add(line int, key, value string) {
	*h = append(*h, KV{Line: line, Key: key, Value: value})
}

func (h Header) uncommented() Header {
	if len(h) == 0 {
		return h
	}
	out := make(Header, 0, len(h))
	for _, kv := range h {
		if !kv.IsCommented {
			out = append(out, kv)
		}
	}
	return out
}
