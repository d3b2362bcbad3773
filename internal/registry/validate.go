// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/ftdgo/internal/ctxlog"
)

// Validate runs check against every definition, in name order, and reports
// all failures at once.
func (r *Registry[D]) Validate(ctx context.Context, check func(name string, def D) error) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string
	for _, name := range r.Names() {
		if err := check(name, r.entries[name]); err != nil {
			errs = append(errs, fmt.Sprintf("'%s': %v", name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validated.", "definitions", len(r.entries))
	return nil
}
