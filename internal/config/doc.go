// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package config defines the format-agnostic project configuration model and
// the Loader interface the interpreter reads imported documents through.
//
// The `config.Model` is produced by a format-specific package (see
// internal/hcl for `ftd.hcl`) and consumed by internal/app. FileLoader is the
// file-system implementation of Loader; MapLoader serves documents from
// memory.
package config
