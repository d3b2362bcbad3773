// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := New[int]()
	r.Register("b", 2)
	r.Register("a", 1)

	v, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, r.Names())
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := New[string]()
	r.Register("text", "first")
	assert.PanicsWithValue(t, "definition with name 'text' already registered", func() {
		r.Register("text", "second")
	})
}

func TestRegistry_Validate(t *testing.T) {
	r := New[int]()
	r.Register("ok", 1)
	r.Register("bad", -1)
	r.Register("worse", -2)

	err := r.Validate(context.Background(), func(name string, def int) error {
		if def < 0 {
			return errors.New("negative")
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, "registry validation failed:\n- 'bad': negative\n- 'worse': negative", err.Error())

	err = r.Validate(context.Background(), func(string, int) error { return nil })
	assert.NoError(t, err)
}
