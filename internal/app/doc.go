// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package app wires the interpreter to the outside world: it loads the
// project configuration, finds the documents to interpret, runs them on a
// pool of workers and writes the resulting JSON.
package app
