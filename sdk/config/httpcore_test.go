// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvrgrid/waveform-transfer/sdk/config"
)

func TestBuildURL(t *testing.T) {
	core := config.NewHTTPCore(nil, config.CoreConfig{
		BaseURL:    "https://transfer.example.org/",
		APIVersion: "v0.10",
	})

	assert.Equal(t,
		"https://transfer.example.org/v0.10/endpoint/owner%23laptop/activation_requirements",
		core.BuildURL("endpoint", "owner#laptop", "activation_requirements", nil))
	assert.Equal(t,
		"https://transfer.example.org/v0.10/transfer/submission_id",
		core.BuildURL("transfer", "submission_id", "", nil))
	assert.Equal(t,
		"https://transfer.example.org/v0.10/endpoint_list?filter=username%3Aalice%2Fis_globus_connect%3Atrue",
		core.BuildURL("endpoint_list", "", "", map[string]string{
			"filter": "username:alice/is_globus_connect:true",
			"limit":  "",
		}))
}

func TestDoSendsTokenAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"a":1}`, string(b))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"code":"Accepted"}`))
	}))
	t.Cleanup(srv.Close)

	core := config.NewHTTPCore(srv.Client(), config.CoreConfig{BaseURL: srv.URL, AccessToken: "tok-123"})
	body, status, err := core.Do(context.Background(), http.MethodPost, srv.URL+"/transfer", []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, status)
	assert.JSONEq(t, `{"code":"Accepted"}`, string(body))
}

func TestDoDecodesErrorDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"ClientError.BadRequest","message":"bad path","request_id":"r1"}`))
	}))
	t.Cleanup(srv.Close)

	core := config.NewHTTPCore(srv.Client(), config.CoreConfig{BaseURL: srv.URL})
	_, status, err := core.Do(context.Background(), http.MethodGet, srv.URL+"/endpoint/x/ls", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, status)

	var apiErr *config.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "ClientError.BadRequest", apiErr.Code)
	assert.Equal(t, "bad path", apiErr.Message)
	assert.Equal(t, "r1", apiErr.RequestID)
	assert.Contains(t, err.Error(), "400 Bad Request")
}
