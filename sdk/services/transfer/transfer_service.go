// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cvrgrid/waveform-transfer/sdk/config"
	"github.com/cvrgrid/waveform-transfer/sdk/logger"
	"github.com/cvrgrid/waveform-transfer/sdk/metrics"
	"github.com/cvrgrid/waveform-transfer/sdk/services/activation"
	"github.com/cvrgrid/waveform-transfer/sdk/services/catalog"
	"github.com/cvrgrid/waveform-transfer/sdk/utils"
)

// TransferService wires one run together from a config.Config.
type TransferService struct {
	conf    config.Config
	runID   string
	log     *slog.Logger
	metrics *metrics.Collector
	s3      *config.S3Client

	Catalog      *catalog.CatalogService
	Activator    *activation.ActivationService
	Translator   *PathTranslator
	Submitter    *Submitter
	Orchestrator *Orchestrator
}

type Option func(*serviceOptions)

type serviceOptions struct {
	log        *slog.Logger
	metrics    *metrics.Collector
	notify     Notifier
	httpClient *http.Client
	runID      string
}

func WithLogger(l *slog.Logger) Option { return func(o *serviceOptions) { o.log = l } }
func WithMetrics(m *metrics.Collector) Option { return func(o *serviceOptions) { o.metrics = m } }
func WithNotifier(n Notifier) Option { return func(o *serviceOptions) { o.notify = n } }
func WithHTTPClient(c *http.Client) Option { return func(o *serviceOptions) { o.httpClient = c } }
func WithRunID(id string) Option { return func(o *serviceOptions) { o.runID = id } }

func NewTransferService(ctx context.Context, conf config.Config, opts ...Option) (*TransferService, error) {
	if conf.Core.BaseURL == "" {
		return nil, errors.New("invalid core config: base url is required")
	}

	o := serviceOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Discard()
	}
	if o.runID == "" {
		o.runID = utils.NewRunID()
	}

	httpClient := o.httpClient
	if httpClient == nil {
		var err error
		httpClient, err = config.NewHTTPClient(ctx, conf)
		if err != nil {
			return nil, fmt.Errorf("http client init failed: %w", err)
		}
	}
	httpc := config.NewHTTPCore(httpClient, conf.Core)

	var s3c *config.S3Client
	if conf.S3.Bucket != "" {
		var err error
		s3c, err = config.NewS3Client(ctx, conf.S3)
		if err != nil {
			return nil, fmt.Errorf("S3 init failed: %w", err)
		}
	}

	tieBreak, err := catalog.ParseTieBreak(conf.Transfer.ServerTieBreak)
	if err != nil {
		return nil, err
	}

	log := o.log.With(slog.String("run_id", o.runID))
	s := &TransferService{
		conf:    conf,
		runID:   o.runID,
		log:     log,
		metrics: o.metrics,
		s3:      s3c,
	}
	s.Catalog = catalog.NewCatalogService(httpc, catalog.Options{TieBreak: tieBreak, Logger: log, Metrics: o.metrics})
	s.Activator = activation.NewActivationService(httpc, log, o.metrics)
	s.Translator = NewPathTranslator(httpc, conf.Transfer.SourceEndpoint, conf.Transfer.SourceOS, log)
	s.Submitter = NewSubmitter(httpc, s.Activator, s.Translator, log, o.metrics)
	s.Orchestrator = NewOrchestrator(s.Catalog, s.Activator, s.Submitter, OrchestratorOptions{
		RunID:  o.runID,
		Logger: o.log,
		Notify: o.notify,
	})
	return s, nil
}

func (s *TransferService) RunID() string { return s.runID }

// Run transfers the configured source root.
func (s *TransferService) Run(ctx context.Context) *Report {
	return s.Orchestrator.Run(ctx, s.conf.Credentials, s.conf.Transfer)
}

// ListEndpoints refreshes the catalog and returns both partitions.
func (s *TransferService) ListEndpoints(ctx context.Context) (personal, server *catalog.Partition, err error) {
	if err = s.Catalog.Refresh(ctx, s.conf.Credentials.Service.Username); err != nil {
		return nil, nil, err
	}
	return s.Catalog.Partition(catalog.Personal), s.Catalog.Partition(catalog.Server), nil
}

func (s *TransferService) CanPublish() bool { return s.s3 != nil }

// PublishManifest stores the manifest of a successful report in the
// configured bucket. Publishing the same task twice is refused.
func (s *TransferService) PublishManifest(ctx context.Context, r *Report) (string, error) {
	if s.s3 == nil {
		return "", errors.New("no S3 bucket configured for manifests")
	}
	m, err := NewManifest(r)
	if err != nil {
		return "", err
	}
	exists, err := s.s3.ManifestExists(ctx, m.Name())
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("manifest %s already published", s.s3.Key(m.Name()))
	}
	uri, err := m.Publish(ctx, s.s3)
	if err != nil {
		return "", err
	}
	s.log.Info("manifest published", slog.String("uri", uri), slog.Int("files", len(m.Files)))
	return uri, nil
}
