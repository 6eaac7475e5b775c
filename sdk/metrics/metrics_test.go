// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package metrics_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvrgrid/waveform-transfer/sdk/metrics"
)

func TestCollectorTextfile(t *testing.T) {
	c := metrics.New()
	c.CatalogRefresh("personal", true)
	c.Activation("password", false)
	c.Submission(2, true)
	c.Submission(5, false)

	path := filepath.Join(t.TempDir(), "waveform.prom")
	require.NoError(t, c.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, `waveform_transfer_catalog_refresh_total{outcome="ok",partition="personal"} 1`)
	assert.Contains(t, out, `waveform_transfer_activation_total{outcome="fail",strategy="password"} 1`)
	assert.Contains(t, out, `waveform_transfer_submission_total{outcome="ok"} 1`)
	assert.Contains(t, out, `waveform_transfer_files_submitted_total 2`)
}

func TestNilCollector(t *testing.T) {
	var c *metrics.Collector
	assert.NotPanics(t, func() {
		c.CatalogRefresh("server", false)
		c.Activation("auto", true)
		c.Submission(1, true)
	})
}
