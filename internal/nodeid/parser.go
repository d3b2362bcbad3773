// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package nodeid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// idRegex matches `<path>[:<slot>-external:<path>][:dummy]`.
var idRegex = regexp.MustCompile(`^(main|\d+(?:,\d+)*)(?::([a-zA-Z0-9_.-]+?)-external:(\d+(?:,\d+)*))?(:dummy)?$`)

// Parse creates a new Address by parsing its canonical data id.
func Parse(rawID string) (*Address, error) {
	if rawID == "" {
		return nil, fmt.Errorf("data id cannot be empty")
	}

	matches := idRegex.FindStringSubmatch(rawID)
	if matches == nil {
		return nil, fmt.Errorf("invalid data id format: %q", rawID)
	}

	addr := &Address{Dummy: matches[4] != ""}
	if matches[1] != Root {
		path, err := parsePath(matches[1])
		if err != nil {
			return nil, err
		}
		addr.Path = path
	}
	if matches[2] != "" {
		if len(addr.Path) == 0 {
			return nil, fmt.Errorf("the root element cannot own external children: %q", rawID)
		}
		path, err := parsePath(matches[3])
		if err != nil {
			return nil, err
		}
		addr.External = &External{Slot: matches[2], Path: path}
	}
	return addr, nil
}

func parsePath(s string) ([]int, error) {
	var path []int
	for _, part := range strings.Split(s, ",") {
		index, err := strconv.Atoi(part)
		if err != nil {
			// Unreachable due to regex `\d+`
			return nil, fmt.Errorf("internal error parsing index: %w", err)
		}
		path = append(path, index)
	}
	return path, nil
}
