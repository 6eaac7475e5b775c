// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvrgrid/waveform-transfer/sdk/config"
)

func TestNewHTTPClientPasswordGrant(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		assert.Equal(t, "alice", r.PostForm.Get("username"))
		assert.Equal(t, "s3cret", r.PostForm.Get("password"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"granted","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(tokenSrv.Close)

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer granted", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(apiSrv.Close)

	conf := config.Config{
		Core: config.CoreConfig{BaseURL: apiSrv.URL},
		Auth: config.AuthConfig{TokenURL: tokenSrv.URL, ClientID: "waveform"},
		Credentials: config.Credentials{
			Service: config.Account{Username: "alice", Password: "s3cret"},
		},
	}
	client, err := config.NewHTTPClient(context.Background(), conf)
	require.NoError(t, err)

	core := config.NewHTTPCore(client, conf.Core)
	_, status, err := core.Do(context.Background(), http.MethodGet, apiSrv.URL+"/endpoint_list", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
}

func TestNewHTTPClientPasswordGrantNeedsPassword(t *testing.T) {
	conf := config.Config{
		Auth:        config.AuthConfig{TokenURL: "http://127.0.0.1:1/token"},
		Credentials: config.Credentials{Service: config.Account{Username: "alice"}},
	}
	_, err := config.NewHTTPClient(context.Background(), conf)
	require.Error(t, err)
}

func TestNewHTTPClientStaticToken(t *testing.T) {
	conf := config.Config{
		Core: config.CoreConfig{AccessToken: "static"},
		Auth: config.AuthConfig{TokenURL: "http://127.0.0.1:1/token"},
	}
	client, err := config.NewHTTPClient(context.Background(), conf)
	require.NoError(t, err)
	assert.NotNil(t, client)
}
