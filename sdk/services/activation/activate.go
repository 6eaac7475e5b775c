// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package activation

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cvrgrid/waveform-transfer/sdk/errtypes"
)

func (s *ActivationService) autoActivate(ctx context.Context, attempt *Attempt) error {
	const op = "activation.auto"

	url := s.http.BuildURL("endpoint", attempt.Endpoint, "autoactivate", nil)
	body, status, err := s.http.Do(ctx, http.MethodPost, url, []byte("{}"))
	if err != nil {
		return errtypes.Activation(op, err, "auto-activation of %s failed", attempt.Endpoint)
	}
	if err := attempt.record(body); err != nil {
		return errtypes.Activation(op, err, "unreadable auto-activation response (status %d)", status)
	}
	if strings.HasPrefix(attempt.Code, autoActivationFailedPrefix) {
		return errtypes.Activation(op, nil, "auto-activation of %s refused: %s", attempt.Endpoint, attempt.Message)
	}
	return nil
}

// requirementsActivate fills the proxy credential requirements and posts
// them back. withHostname also sets the proxy server hostname; otherwise
// the hostname the endpoint advertises is kept.
func (s *ActivationService) requirementsActivate(ctx context.Context, attempt *Attempt, req Request, withHostname bool) error {
	op := "activation." + string(attempt.Strategy)

	reqs, err := s.Requirements(ctx, attempt.Endpoint)
	if err != nil {
		return errtypes.Activation(op, err, "unable to fetch activation requirements of %s", attempt.Endpoint)
	}

	values := map[string]string{
		fieldUsername:   req.Username,
		fieldPassphrase: req.Password,
	}
	if withHostname {
		values[fieldHostname] = req.ProxyHostname
	}
	if n := reqs.fill(requirementProxy, values); n == 0 {
		return errtypes.Activation(op, nil, "%s does not accept proxy credentials", attempt.Endpoint)
	}

	data, err := json.Marshal(reqs)
	if err != nil {
		return errtypes.Activation(op, err, "unable to encode activation requirements")
	}

	url := s.http.BuildURL("endpoint", attempt.Endpoint, "activate", nil)
	body, status, err := s.http.Do(ctx, http.MethodPost, url, data)
	if err != nil {
		return errtypes.Activation(op, err, "activation of %s failed", attempt.Endpoint)
	}
	if status >= http.StatusBadRequest {
		return errtypes.Activation(op, nil, "activation of %s responded with status %d", attempt.Endpoint, status)
	}
	if err := attempt.record(body); err != nil {
		return errtypes.Activation(op, err, "unreadable activation response")
	}
	return nil
}

// Requirements fetches the activation requirements document of endpoint.
func (s *ActivationService) Requirements(ctx context.Context, endpoint string) (*Requirements, error) {
	url := s.http.BuildURL("endpoint", endpoint, "activation_requirements", nil)
	body, _, err := s.http.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	reqs := &Requirements{}
	if err := json.Unmarshal(body, reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// fill sets the value of every requirement of type typ whose name is in
// values and returns how many requirements of that type exist.
func (r *Requirements) fill(typ string, values map[string]string) int {
	n := 0
	for i := range r.Data {
		if !strings.EqualFold(r.Data[i].Type, typ) {
			continue
		}
		n++
		if v, ok := values[strings.ToLower(r.Data[i].Name)]; ok {
			r.Data[i].Value = v
		}
	}
	return n
}

func (a *Attempt) record(body []byte) error {
	if len(body) == 0 {
		return nil
	}
	var res activationResult
	if err := json.Unmarshal(body, &res); err != nil {
		return err
	}
	a.Code = res.Code
	a.Message = res.Message
	a.ExpireTime = res.ExpireTime
	return nil
}
