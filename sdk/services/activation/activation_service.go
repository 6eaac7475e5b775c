// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package activation

import (
	"context"
	"log/slog"

	"github.com/cvrgrid/waveform-transfer/sdk/config"
	"github.com/cvrgrid/waveform-transfer/sdk/errtypes"
	"github.com/cvrgrid/waveform-transfer/sdk/logger"
	"github.com/cvrgrid/waveform-transfer/sdk/metrics"
)

// Activator is what the transfer services need from this package.
type Activator interface {
	Activate(ctx context.Context, req Request) (*Attempt, error)
}

type ActivationService struct {
	http    config.CoreHTTP
	log     *slog.Logger
	metrics *metrics.Collector
}

func NewActivationService(http config.CoreHTTP, log *slog.Logger, m *metrics.Collector) *ActivationService {
	if log == nil {
		log = logger.Discard()
	}
	return &ActivationService{
		http:    http,
		log:     log.With(slog.String("component", "activation")),
		metrics: m,
	}
}

// Activate runs the single strategy selected for req. On failure the
// attempt ends in Failed and the error is an activation error.
func (s *ActivationService) Activate(ctx context.Context, req Request) (*Attempt, error) {
	attempt := &Attempt{Endpoint: req.Endpoint, State: Unchecked}
	if req.Endpoint == "" {
		attempt.transition(Failed)
		return attempt, errtypes.Input("activation.activate", nil, "endpoint name is required")
	}

	attempt.Strategy = SelectStrategy(req)
	attempt.transition(Checking)

	log := s.log.With(
		slog.String("endpoint", req.Endpoint),
		slog.String("strategy", string(attempt.Strategy)))
	log.Info("activating endpoint")

	var err error
	switch attempt.Strategy {
	case StrategyAuto:
		err = s.autoActivate(ctx, attempt)
	case StrategyProxy:
		err = s.requirementsActivate(ctx, attempt, req, true)
	default:
		err = s.requirementsActivate(ctx, attempt, req, false)
	}

	s.metrics.Activation(string(attempt.Strategy), err == nil)
	if err != nil {
		attempt.transition(Failed)
		log.Error("unable to activate endpoint", slog.Any("error", err))
		return attempt, err
	}

	attempt.transition(Activated)
	log.Info("endpoint activated", slog.String("code", attempt.Code))
	return attempt, nil
}
