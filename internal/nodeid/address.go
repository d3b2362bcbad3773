// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package nodeid

import (
	"reflect"
	"strconv"
	"strings"
)

// Root is the data id of the root element.
const Root = "main"

const (
	externalMarker = "-external:"
	dummySuffix    = ":dummy"
)

// String serializes the Address into its canonical data id.
func (a *Address) String() string {
	if a == nil {
		return ""
	}

	var sb strings.Builder
	if len(a.Path) == 0 {
		sb.WriteString(Root)
	}
	writePath(&sb, a.Path)
	if a.External != nil {
		sb.WriteRune(':')
		sb.WriteString(a.External.Slot)
		sb.WriteString(externalMarker)
		writePath(&sb, a.External.Path)
	}
	if a.Dummy {
		sb.WriteString(dummySuffix)
	}
	return sb.String()
}

func writePath(sb *strings.Builder, path []int) {
	for i, p := range path {
		if i > 0 {
			sb.WriteRune(',')
		}
		sb.WriteString(strconv.Itoa(p))
	}
}

// Equal checks for deep equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return len(a.Path) == len(other.Path) &&
		(len(a.Path) == 0 || reflect.DeepEqual(a.Path, other.Path)) &&
		reflect.DeepEqual(a.External, other.External) &&
		a.Dummy == other.Dummy
}
