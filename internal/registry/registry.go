// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"fmt"
	"log/slog"
	"sort"
)

// Registry maps names to definitions of type D.
type Registry[D any] struct {
	entries map[string]D
}

// New creates an empty Registry.
func New[D any]() *Registry[D] {
	return &Registry[D]{entries: make(map[string]D)}
}

// Register adds a definition. It panics if name is already registered.
func (r *Registry[D]) Register(name string, def D) {
	if _, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("definition with name '%s' already registered", name))
	}
	slog.Debug("Registering definition.", "name", name)
	r.entries[name] = def
}

// Get returns the definition registered under name.
func (r *Registry[D]) Get(name string) (D, bool) {
	def, ok := r.entries[name]
	return def, ok
}

// Names returns every registered name in lexical order.
func (r *Registry[D]) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of registered definitions.
func (r *Registry[D]) Len() int { return len(r.entries) }
