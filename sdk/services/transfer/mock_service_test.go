// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package transfer_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cvrgrid/waveform-transfer/sdk/config"
	"github.com/cvrgrid/waveform-transfer/sdk/errtypes"
	"github.com/cvrgrid/waveform-transfer/sdk/services/activation"
	"github.com/cvrgrid/waveform-transfer/sdk/services/transfer"
)

// mockTransferService emulates the subset of the transfer API used by a run.
type mockTransferService struct {
	mu sync.Mutex

	personalListing string
	serverListing   string
	lsStatus        int
	transferStatus  int

	calls     []string
	lsPaths   []string
	submitted []transfer.Document
}

func (m *mockTransferService) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()

		p := strings.TrimPrefix(r.URL.EscapedPath(), "/v0.10/")
		m.calls = append(m.calls, r.Method+" "+p)

		switch {
		case p == "endpoint_list":
			if strings.HasSuffix(r.URL.Query().Get("filter"), "is_globus_connect:true") {
				_, _ = io.WriteString(w, m.personalListing)
			} else {
				_, _ = io.WriteString(w, m.serverListing)
			}
		case strings.HasSuffix(p, "/autoactivate"):
			_, _ = io.WriteString(w, `{"code": "AutoActivated.GlobusOnlineCredential", "message": "ok"}`)
		case strings.HasSuffix(p, "/activation_requirements"):
			_, _ = io.WriteString(w, `{"DATA_TYPE": "activation_requirements", "DATA": [
				{"type": "myproxy", "name": "hostname", "value": "myproxy.example.org"},
				{"type": "myproxy", "name": "username", "value": null},
				{"type": "myproxy", "name": "passphrase", "value": null, "private": true}]}`)
		case strings.HasSuffix(p, "/activate"):
			_, _ = io.WriteString(w, `{"code": "Activated.MyProxyCredential", "message": "ok"}`)
		case strings.HasSuffix(p, "/ls"):
			m.lsPaths = append(m.lsPaths, r.URL.Query().Get("path"))
			status := m.lsStatus
			if status == 0 {
				status = http.StatusOK
			}
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `{"DATA_TYPE": "file_list", "DATA": []}`)
		case p == "transfer/submission_id":
			_, _ = io.WriteString(w, `{"value": "sub-0001"}`)
		case p == "transfer" && r.Method == http.MethodPost:
			var doc transfer.Document
			b, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(b, &doc))
			m.submitted = append(m.submitted, doc)
			if m.transferStatus >= 400 {
				w.WriteHeader(m.transferStatus)
				_, _ = io.WriteString(w, `{"code": "ClientError.BadRequest", "message": "rejected"}`)
				return
			}
			w.WriteHeader(http.StatusAccepted)
			_, _ = io.WriteString(w, `{"code": "Accepted", "message": "queued", "task_id": "task-42", "submission_id": "sub-0001"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (m *mockTransferService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockTransferService) count(call string) int {
	n := 0
	for _, c := range m.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func newCore(srv *httptest.Server) config.CoreHTTP {
	return config.NewHTTPCore(srv.Client(), config.CoreConfig{BaseURL: srv.URL, APIVersion: "v0.10"})
}

// fakeActivator records activation requests and fails the listed endpoints.
type fakeActivator struct {
	fail  map[string]bool
	calls []activation.Request
}

func (f *fakeActivator) Activate(_ context.Context, req activation.Request) (*activation.Attempt, error) {
	f.calls = append(f.calls, req)
	attempt := &activation.Attempt{Endpoint: req.Endpoint, Strategy: activation.SelectStrategy(req)}
	if f.fail[req.Endpoint] {
		attempt.State = activation.Failed
		return attempt, errtypes.Activation("activation.fake", nil, "%s refused", req.Endpoint)
	}
	attempt.State = activation.Activated
	return attempt, nil
}

func (f *fakeActivator) endpoints() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Endpoint)
	}
	return out
}
