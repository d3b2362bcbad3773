// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package testutil provides shared helpers for tests that run the whole
// application against documents written to a temporary directory. Set
// FTDGO_TEST_LOGS=true to print the captured logs of every run.
package testutil
