// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

var iniPathOverride string

// SetIniPath makes every later load and save use path instead of
// ~/.waveform-transfer.ini.
func SetIniPath(path string) {
	iniPathOverride = path
}

func getIniPath() string {
	if iniPathOverride != "" {
		return iniPathOverride
	}
	if p := os.Getenv(IniPathEnv); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, IniName)
}

// loadIniFile only treats " #" and " ;" as comments: endpoint names look
// like owner#label.
func loadIniFile(path string) (*ini.File, error) {
	return ini.LoadSources(ini.LoadOptions{SpaceBeforeInlineComment: true}, path)
}

func LoadIni(createOnMissing bool) (*ini.File, error) {
	cfg, err := loadIniFile(getIniPath())
	if err != nil {
		if !createOnMissing {
			return nil, fmt.Errorf("failed to read ini file: %w", err)
		}
		return ini.Empty(), nil
	}
	return cfg, nil
}

func SaveIni(cfg *ini.File) error {
	if err := cfg.SaveTo(getIniPath()); err != nil {
		return fmt.Errorf("failed to update ini file: %w", err)
	}
	return nil
}

func TranslateFormat(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	default:
		return "short"
	}
}
