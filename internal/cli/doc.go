// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes and error
// rendering. It translates CLI flags and FTDGO_* environment variables into
// the application's internal configuration.
package cli
