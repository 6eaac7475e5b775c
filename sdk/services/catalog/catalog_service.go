// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"log/slog"

	"github.com/cvrgrid/waveform-transfer/sdk/config"
	"github.com/cvrgrid/waveform-transfer/sdk/logger"
	"github.com/cvrgrid/waveform-transfer/sdk/metrics"
)

type Options struct {
	TieBreak TieBreak
	Logger   *slog.Logger
	Metrics  *metrics.Collector
}

// CatalogService holds the latest endpoint listing snapshot of one account.
// It is not safe for concurrent refreshes.
type CatalogService struct {
	http       config.CoreHTTP
	tieBreak   TieBreak
	log        *slog.Logger
	metrics    *metrics.Collector
	partitions map[PartitionKind]*Partition
}

func NewCatalogService(http config.CoreHTTP, opts Options) *CatalogService {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	tb := opts.TieBreak
	if tb == "" {
		tb = LastServer
	}
	return &CatalogService{
		http:     http,
		tieBreak: tb,
		log:      log.With(slog.String("component", "catalog")),
		metrics:  opts.Metrics,
		partitions: map[PartitionKind]*Partition{
			Personal: emptyPartition(Personal),
			Server:   emptyPartition(Server),
		},
	}
}

// Partition returns the current snapshot of kind, empty before the first
// successful refresh.
func (s *CatalogService) Partition(kind PartitionKind) *Partition {
	if p, ok := s.partitions[kind]; ok {
		return p
	}
	return emptyPartition(kind)
}
