// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package nodeid

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		expectedAddr *Address
		expectErr    bool
	}{
		{
			name:         "root",
			input:        "main",
			expectedAddr: &Address{},
		},
		{
			name:         "single index",
			input:        "4",
			expectedAddr: &Address{Path: []int{4}},
		},
		{
			name:         "path",
			input:        "0,10,2",
			expectedAddr: &Address{Path: []int{0, 10, 2}},
		},
		{
			name:         "dummy",
			input:        "0,1:dummy",
			expectedAddr: &Address{Path: []int{0, 1}, Dummy: true},
		},
		{
			name:         "external",
			input:        "2:inner-external:1",
			expectedAddr: &Address{Path: []int{2}, External: &External{Slot: "inner", Path: []int{1}}},
		},
		{
			name:         "external descendant",
			input:        "2:inner-external:1,0",
			expectedAddr: &Address{Path: []int{2}, External: &External{Slot: "inner", Path: []int{1, 0}}},
		},
		{name: "empty", input: "", expectErr: true},
		{name: "trailing comma", input: "0,", expectErr: true},
		{name: "negative index", input: "-1", expectErr: true},
		{name: "letters", input: "a,b", expectErr: true},
		{name: "external on root", input: "main:inner-external:0", expectErr: true},
		{name: "unknown suffix", input: "0:other", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := Parse(tc.input)
			if tc.expectErr {
				require.Error(t, err)
				assert.Nil(t, addr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tc.expectedAddr, addr); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
