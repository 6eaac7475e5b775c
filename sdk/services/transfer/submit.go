// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cvrgrid/waveform-transfer/sdk/config"
	"github.com/cvrgrid/waveform-transfer/sdk/errtypes"
	"github.com/cvrgrid/waveform-transfer/sdk/logger"
	"github.com/cvrgrid/waveform-transfer/sdk/metrics"
	"github.com/cvrgrid/waveform-transfer/sdk/services/activation"
)

// Submitter activates both endpoints and submits one batch.
type Submitter struct {
	http       config.CoreHTTP
	activator  activation.Activator
	translator *PathTranslator
	log        *slog.Logger
	metrics    *metrics.Collector
}

func NewSubmitter(http config.CoreHTTP, activator activation.Activator, translator *PathTranslator,
	log *slog.Logger, m *metrics.Collector) *Submitter {
	if log == nil {
		log = logger.Discard()
	}
	return &Submitter{
		http:       http,
		activator:  activator,
		translator: translator,
		log:        log.With(slog.String("component", "transfer_submitter")),
		metrics:    m,
	}
}

// Submit runs, in order: source activation, destination activation,
// submission id fetch, document build and a single POST. The result is
// never nil; on error its status is StatusFail. Nothing is retried.
func (s *Submitter) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	res := &SubmitResult{Status: StatusFail}
	log := s.log.With(
		slog.String("source", req.Source.Endpoint),
		slog.String("destination", req.Destination.Endpoint))

	if len(req.Files) == 0 {
		return res, errtypes.Input("transfer.submit", nil, "no files to transfer")
	}

	if _, err := s.activator.Activate(ctx, req.Source); err != nil {
		log.Error("source endpoint activation failed", slog.Any("error", err))
		return res, err
	}
	if _, err := s.activator.Activate(ctx, req.Destination); err != nil {
		log.Error("destination endpoint activation failed", slog.Any("error", err))
		return res, err
	}
	log.Info("endpoints activated")

	id, err := s.SubmissionID(ctx)
	if err != nil {
		log.Error("unable to obtain a submission id", slog.Any("error", err))
		return res, err
	}
	res.SubmissionID = id

	doc, err := s.BuildRequest(ctx, id, req)
	if err != nil {
		log.Error("unable to build the transfer document", slog.Any("error", err))
		s.metrics.Submission(len(req.Files), false)
		return res, err
	}
	res.Items = len(doc.Data)

	out, err := s.post(ctx, doc)
	s.metrics.Submission(res.Items, err == nil)
	if err != nil {
		log.Error("transfer submission failed", slog.String("submission_id", id), slog.Any("error", err))
		return res, err
	}

	res.Status = StatusOK
	res.TaskID = out.TaskID
	res.Code = out.Code
	res.Message = out.Message
	log.Info("transfer submitted",
		slog.String("submission_id", id),
		slog.String("task_id", out.TaskID),
		slog.Int("items", res.Items))
	return res, nil
}

// SubmissionID fetches a fresh single-use submission id.
func (s *Submitter) SubmissionID(ctx context.Context) (string, error) {
	const op = "transfer.submission_id"

	url := s.http.BuildURL("transfer", "submission_id", "", nil)
	body, _, err := s.http.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errtypes.Submission(op, err, "request failed")
	}
	var sid submissionID
	if err := json.Unmarshal(body, &sid); err != nil {
		return "", errtypes.Submission(op, err, "malformed response")
	}
	if sid.Value == "" {
		return "", errtypes.Submission(op, nil, "empty submission id")
	}
	return sid.Value, nil
}

// BuildRequest builds the transfer document for req under submission id.
// Destination paths are DestinationRoot + file name, not normalized.
func (s *Submitter) BuildRequest(ctx context.Context, id string, req SubmitRequest) (*Document, error) {
	doc := &Document{
		DataType:     dataTypeTransfer,
		SubmissionID: id,
		Label:        req.Label,
		Data:         make([]Item, 0, len(req.Files)),
	}
	for _, f := range req.Files {
		src, err := s.translator.Translate(ctx, f)
		if err != nil {
			return nil, err
		}
		doc.Data = append(doc.Data, Item{
			DataType:            dataTypeTransferItem,
			SourceEndpoint:      req.Source.Endpoint,
			SourcePath:          src,
			DestinationEndpoint: req.Destination.Endpoint,
			DestinationPath:     req.DestinationRoot + baseName(f),
		})
	}
	return doc, nil
}

func (s *Submitter) post(ctx context.Context, doc *Document) (*transferResult, error) {
	const op = "transfer.submit"

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errtypes.Submission(op, err, "unable to encode transfer document")
	}
	url := s.http.BuildURL("transfer", "", "", nil)
	body, _, err := s.http.Do(ctx, http.MethodPost, url, data)
	if err != nil {
		return nil, errtypes.Submission(op, err, "transfer request failed")
	}
	out := &transferResult{}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, errtypes.Submission(op, err, "malformed transfer response")
	}
	return out, nil
}

// baseName accepts both separators, paths may come from a windows host.
func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}
