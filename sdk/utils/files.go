// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

type FileInfo struct {
	Path    string    `json:"path"     yaml:"path"`
	Size    int64     `json:"size"     yaml:"size"`
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// ListFiles returns the absolute paths of the regular files directly under
// root, sorted by name. Sub-directories are not entered.
func ListFiles(root string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		full := filepath.Join(abs, e.Name())
		if !isRegular(full, e) {
			continue
		}
		files = append(files, full)
	}
	return files, nil
}

// DiscoverFiles walks root recursively and returns every regular file with
// its path relative to root, slash separated.
func DiscoverFiles(root string) ([]FileInfo, error) {
	var out []FileInfo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !isRegular(path, d) {
			return nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, FileInfo{
			Path:    filepath.ToSlash(rel),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// isRegular follows symlinks.
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink != 0 {
		st, err := os.Stat(path)
		return err == nil && st.Mode().IsRegular()
	}
	return d.Type().IsRegular()
}
