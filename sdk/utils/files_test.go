// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvrgrid/waveform-transfer/sdk/utils"
)

func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, body := range map[string]string{
		"a.hea":           "header",
		"a.dat":           "0123456789",
		"nested/b.hea":    "header",
		"nested/deep/c.x": "x",
	} {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return root
}

func TestListFilesOneLevel(t *testing.T) {
	root := writeTree(t)

	files, err := utils.ListFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.dat"),
		filepath.Join(root, "a.hea"),
	}, files)
}

func TestListFilesMissingRoot(t *testing.T) {
	_, err := utils.ListFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestDiscoverFilesRecursive(t *testing.T) {
	root := writeTree(t)

	found, err := utils.DiscoverFiles(root)
	require.NoError(t, err)

	var paths []string
	for _, f := range found {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"a.dat", "a.hea", "nested/b.hea", "nested/deep/c.x"}, paths)
	assert.Equal(t, int64(10), found[0].Size)
}
