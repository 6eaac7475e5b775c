// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package transfer_test

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvrgrid/waveform-transfer/sdk/errtypes"
	"github.com/cvrgrid/waveform-transfer/sdk/metrics"
	"github.com/cvrgrid/waveform-transfer/sdk/services/activation"
	"github.com/cvrgrid/waveform-transfer/sdk/services/transfer"
)

func newSubmitter(t *testing.T, m *mockTransferService, act activation.Activator, goos string) *transfer.Submitter {
	t.Helper()
	srv := m.start(t)
	core := newCore(srv)
	tr := transfer.NewPathTranslator(core, "alice#laptop", goos, nil)
	return transfer.NewSubmitter(core, act, tr, nil, metrics.New())
}

func submitRequest(files ...string) transfer.SubmitRequest {
	return transfer.SubmitRequest{
		Source:          activation.Request{Endpoint: "alice#laptop"},
		Destination:     activation.Request{Endpoint: "cvrg#storage", Username: "dest", Password: "pw"},
		DestinationRoot: "/home/dest/",
		Files:           files,
		Label:           "waveform-transfer run-1",
	}
}

func TestSubmitBuildsOneBatch(t *testing.T) {
	m := &mockTransferService{}
	act := &fakeActivator{}
	sub := newSubmitter(t, m, act, "linux")

	res, err := sub.Submit(context.Background(), submitRequest("/data/ecg/a.hea", "/data/ecg/a.dat"))
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusOK, res.Status)
	assert.Equal(t, "sub-0001", res.SubmissionID)
	assert.Equal(t, "task-42", res.TaskID)
	assert.Equal(t, 2, res.Items)

	assert.Equal(t, []string{"alice#laptop", "cvrg#storage"}, act.endpoints())
	assert.Equal(t, []string{"GET transfer/submission_id", "POST transfer"}, m.Calls())

	require.Len(t, m.submitted, 1)
	doc := m.submitted[0]
	assert.Equal(t, "transfer", doc.DataType)
	assert.Equal(t, "sub-0001", doc.SubmissionID)
	assert.Equal(t, "waveform-transfer run-1", doc.Label)
	require.Len(t, doc.Data, 2)
	assert.Equal(t, transfer.Item{
		DataType:            "transfer_item",
		SourceEndpoint:      "alice#laptop",
		SourcePath:          "/data/ecg/a.hea",
		DestinationEndpoint: "cvrg#storage",
		DestinationPath:     "/home/dest/a.hea",
	}, doc.Data[0])
	assert.Equal(t, "/home/dest/a.dat", doc.Data[1].DestinationPath)
}

func TestSubmitAbortsBeforeSubmissionIDWhenSourceFails(t *testing.T) {
	m := &mockTransferService{}
	act := &fakeActivator{fail: map[string]bool{"alice#laptop": true}}
	sub := newSubmitter(t, m, act, "linux")

	res, err := sub.Submit(context.Background(), submitRequest("/data/ecg/a.dat"))
	require.Error(t, err)
	assert.True(t, errtypes.IsActivation(err))
	assert.Equal(t, transfer.StatusFail, res.Status)
	assert.Equal(t, []string{"alice#laptop"}, act.endpoints())
	assert.Zero(t, m.count("GET transfer/submission_id"))
}

func TestSubmitAbortsWhenDestinationFails(t *testing.T) {
	m := &mockTransferService{}
	act := &fakeActivator{fail: map[string]bool{"cvrg#storage": true}}
	sub := newSubmitter(t, m, act, "linux")

	res, err := sub.Submit(context.Background(), submitRequest("/data/ecg/a.dat"))
	require.Error(t, err)
	assert.Equal(t, transfer.StatusFail, res.Status)
	assert.Empty(t, m.Calls())
}

func TestSubmitRejectedIsSubmissionError(t *testing.T) {
	m := &mockTransferService{transferStatus: http.StatusBadRequest}
	sub := newSubmitter(t, m, &fakeActivator{}, "linux")

	res, err := sub.Submit(context.Background(), submitRequest("/data/ecg/a.dat"))
	require.Error(t, err)
	assert.True(t, errtypes.IsSubmission(err))
	assert.Equal(t, transfer.StatusFail, res.Status)
	assert.Equal(t, "sub-0001", res.SubmissionID)
	assert.Equal(t, 1, m.count("POST transfer"))
}

func TestSubmitWithoutFiles(t *testing.T) {
	m := &mockTransferService{}
	act := &fakeActivator{}
	sub := newSubmitter(t, m, act, "linux")

	res, err := sub.Submit(context.Background(), submitRequest())
	require.Error(t, err)
	assert.True(t, errtypes.IsInput(err))
	assert.Equal(t, transfer.StatusFail, res.Status)
	assert.Empty(t, act.calls)
}

func TestBuildRequestWindowsSource(t *testing.T) {
	m := &mockTransferService{lsStatus: http.StatusBadRequest}
	sub := newSubmitter(t, m, &fakeActivator{}, "windows")

	doc, err := sub.BuildRequest(context.Background(), "sub-9", submitRequest(`C:\ecg\a.hea`, `C:\ecg\a.dat`))
	require.NoError(t, err)
	require.Len(t, doc.Data, 2)
	assert.Equal(t, "/cygdrive/c/ecg/a.hea", doc.Data[0].SourcePath)
	assert.Equal(t, "/home/dest/a.hea", doc.Data[0].DestinationPath)
	assert.Equal(t, "/cygdrive/c/ecg/a.dat", doc.Data[1].SourcePath)
	assert.Equal(t, 1, m.count("GET endpoint/alice%23laptop/ls"))
}

func TestBuildRequestDoesNotNormalizeRoot(t *testing.T) {
	sub := newSubmitter(t, &mockTransferService{}, &fakeActivator{}, "linux")
	req := submitRequest(filepath.Join("/data", "a.dat"))
	req.DestinationRoot = "/home/dest"

	doc, err := sub.BuildRequest(context.Background(), "sub-9", req)
	require.NoError(t, err)
	assert.Equal(t, "/home/desta.dat", doc.Data[0].DestinationPath)
}
