// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package transfer_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvrgrid/waveform-transfer/sdk/errtypes"
	"github.com/cvrgrid/waveform-transfer/sdk/services/transfer"
)

func TestTranslateNonWindowsPassThrough(t *testing.T) {
	m := &mockTransferService{}
	srv := m.start(t)
	tr := transfer.NewPathTranslator(newCore(srv), "alice#laptop", "linux", nil)

	out, err := tr.Translate(context.Background(), "/data/ecg/a.dat")
	require.NoError(t, err)
	assert.Equal(t, "/data/ecg/a.dat", out)
	assert.Empty(t, m.Calls())
}

func TestTranslateWindowsForcedModes(t *testing.T) {
	ctx := context.Background()
	m := &mockTransferService{}
	srv := m.start(t)

	tr := transfer.NewPathTranslator(newCore(srv), "alice#laptop", "windows", nil)
	tr.ForceMode(transfer.ModeNew)
	out, err := tr.Translate(ctx, `D:\a\b\c.dat`)
	require.NoError(t, err)
	assert.Equal(t, "/d/a/b/c.dat", out)

	tr = transfer.NewPathTranslator(newCore(srv), "alice#laptop", "windows", nil)
	tr.ForceMode(transfer.ModeOld)
	out, err = tr.Translate(ctx, `D:\a\b\c.dat`)
	require.NoError(t, err)
	assert.Equal(t, "/cygdrive/d/a/b/c.dat", out)

	// forced modes never probe
	assert.Empty(t, m.Calls())
}

func TestTranslateWindowsMalformed(t *testing.T) {
	m := &mockTransferService{}
	srv := m.start(t)
	tr := transfer.NewPathTranslator(newCore(srv), "alice#laptop", "windows", nil)

	_, err := tr.Translate(context.Background(), `\data\x.dat`)
	require.Error(t, err)
	assert.True(t, errtypes.IsInput(err))
}

func TestProbeDetectsOldClientOnce(t *testing.T) {
	ctx := context.Background()
	m := &mockTransferService{lsStatus: http.StatusBadRequest}
	srv := m.start(t)
	tr := transfer.NewPathTranslator(newCore(srv), "alice#laptop", "windows", nil)
	assert.Equal(t, transfer.ModeUnknown, tr.Mode())

	out, err := tr.Translate(ctx, `C:\data\x.dat`)
	require.NoError(t, err)
	assert.Equal(t, "/cygdrive/c/data/x.dat", out)
	assert.Equal(t, transfer.ModeOld, tr.Mode())

	out, err = tr.Translate(ctx, `C:\data\y.dat`)
	require.NoError(t, err)
	assert.Equal(t, "/cygdrive/c/data/y.dat", out)

	assert.Equal(t, []string{"/c/data"}, m.lsPaths)
	assert.Equal(t, 1, m.count("GET endpoint/alice%23laptop/ls"))
}

func TestProbeFailureAssumesNewClient(t *testing.T) {
	m := &mockTransferService{lsStatus: http.StatusInternalServerError}
	srv := m.start(t)
	tr := transfer.NewPathTranslator(newCore(srv), "alice#laptop", "windows", nil)

	out, err := tr.Translate(context.Background(), `C:\data\x.dat`)
	require.NoError(t, err)
	assert.Equal(t, "/c/data/x.dat", out)
	assert.Equal(t, transfer.ModeNew, tr.Mode())
}
