// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type CoreHTTP interface {
	BuildURL(resource, id, action string, params map[string]string) string
	Do(ctx context.Context, method, url string, data []byte) ([]byte, int, error)
}

// APIError is the error document the transfer service returns with a
// status >= 400.
type APIError struct {
	StatusCode int    `json:"-"`
	Status     string `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id"`
	Resource   string `json:"resource"`
}

func (e *APIError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("transfer service responded with: %s - %s: %s", e.Status, e.Code, e.Message)
	case e.Message != "":
		return fmt.Sprintf("transfer service responded with: %s - %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("transfer service responded with: %s", e.Status)
	}
}

type httpCore struct {
	httpClient *http.Client
	coreConfig CoreConfig
}

func NewHTTPCore(httpClient *http.Client, coreConfig CoreConfig) CoreHTTP {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &httpCore{httpClient: httpClient, coreConfig: coreConfig}
}

// BuildURL returns {base}/{version}/{resource}[/{id}][/{action}][?params].
// id is path-escaped, endpoint names contain '#'.
func (httpCore *httpCore) BuildURL(resource, id, action string, params map[string]string) string {
	base := strings.TrimRight(httpCore.coreConfig.BaseURL, "/")
	if v := strings.Trim(httpCore.coreConfig.APIVersion, "/"); v != "" {
		base += "/" + v
	}
	base += "/" + resource
	if id != "" {
		base += "/" + url.PathEscape(id)
	}
	if action != "" {
		base += "/" + action
	}
	q := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		q.Set(k, v)
	}
	if len(q) > 0 {
		base += "?" + q.Encode()
	}
	return base
}

func (httpCore *httpCore) Do(ctx context.Context, method, url string, data []byte) ([]byte, int, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// A static token wins over whatever the client transport would add.
	if tok := httpCore.coreConfig.AccessToken; tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := httpCore.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	b, rerr := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{}
		_ = json.Unmarshal(b, apiErr)
		apiErr.StatusCode = resp.StatusCode
		apiErr.Status = resp.Status
		return b, resp.StatusCode, apiErr
	}
	return b, resp.StatusCode, rerr
}
