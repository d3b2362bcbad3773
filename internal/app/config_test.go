// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		in      Config
		want    *Config
		wantErr string
	}{
		{
			name: "defaults",
			in:   Config{DocPath: "index.ftd"},
			want: &Config{DocPath: "index.ftd", LogLevel: "info", LogFormat: "text", WorkerCount: 4},
		},
		{
			name: "project file only",
			in:   Config{ConfigPath: "ftd.hcl", LogLevel: "debug", LogFormat: "json", WorkerCount: 1},
			want: &Config{ConfigPath: "ftd.hcl", LogLevel: "debug", LogFormat: "json", WorkerCount: 1},
		},
		{name: "nothing to interpret", in: Config{}, wantErr: "a document path or a project file is required"},
		{name: "bad level", in: Config{DocPath: "x", LogLevel: "loud"}, wantErr: `invalid log level "loud"`},
		{name: "bad format", in: Config{DocPath: "x", LogFormat: "xml"}, wantErr: `invalid log format "xml"`},
		{name: "negative workers", in: Config{DocPath: "x", WorkerCount: -1}, wantErr: "worker count must not be negative, got -1"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewConfig(tc.in)
			if tc.wantErr != "" {
				require.EqualError(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
