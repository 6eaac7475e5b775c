// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

func UUIDv4NoDash() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// NewRunID returns the configured run id, or a fresh one. It tags logs,
// the default transfer label and the manifest.
func NewRunID() string {
	if id := viper.GetString(RunId); id != "" {
		return id
	}
	return UUIDv4NoDash()[:12]
}
