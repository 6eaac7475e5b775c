// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/cvrgrid/waveform-transfer/sdk/config"
	"github.com/cvrgrid/waveform-transfer/sdk/errtypes"
	"github.com/cvrgrid/waveform-transfer/sdk/logger"
	"github.com/cvrgrid/waveform-transfer/sdk/services/activation"
	"github.com/cvrgrid/waveform-transfer/sdk/utils"
)

// EndpointCatalog answers the reachability questions asked before a run.
type EndpointCatalog interface {
	Refresh(ctx context.Context, username string) error
	IsConnected(fullName string) bool
	IsActivated(fullName string) bool
}

type OrchestratorOptions struct {
	RunID  string
	Logger *slog.Logger
	Notify Notifier
	// defaults to utils.ListFiles
	ListFiles func(root string) ([]string, error)
}

type Orchestrator struct {
	catalog   EndpointCatalog
	activator activation.Activator
	submitter *Submitter
	runID     string
	log       *slog.Logger
	notify    Notifier
	listFiles func(root string) ([]string, error)
}

func NewOrchestrator(catalog EndpointCatalog, activator activation.Activator, submitter *Submitter,
	opts OrchestratorOptions) *Orchestrator {
	o := &Orchestrator{
		catalog:   catalog,
		activator: activator,
		submitter: submitter,
		runID:     opts.RunID,
		log:       opts.Logger,
		notify:    opts.Notify,
		listFiles: opts.ListFiles,
	}
	if o.log == nil {
		o.log = logger.Discard()
	}
	o.log = o.log.With(slog.String("component", "transfer_orchestrator"))
	if o.runID != "" {
		o.log = o.log.With(slog.String("run_id", o.runID))
	}
	if o.notify == nil {
		o.notify = func(Stage, string) {}
	}
	if o.listFiles == nil {
		o.listFiles = utils.ListFiles
	}
	return o
}

// Run moves every file directly under tc.SourceRoot: catalog lookup, then
// destination activation when needed, then one submission. Errors never
// escape; they are carried by the report.
func (o *Orchestrator) Run(ctx context.Context, creds config.Credentials, tc config.TransferConfig) *Report {
	report := &Report{
		RunID:           o.runID,
		Status:          StatusFail,
		Source:          tc.SourceEndpoint,
		Destination:     tc.DestinationEndpoint,
		DestinationRoot: tc.DestinationRoot,
		Label:           tc.Label,
	}
	if report.Label == "" && o.runID != "" {
		report.Label = "waveform-transfer " + o.runID
	}

	if err := creds.Validate(); err != nil {
		return o.fail(report, err)
	}
	if err := tc.Validate(); err != nil {
		return o.fail(report, err)
	}

	files, err := o.listFiles(tc.SourceRoot)
	if err != nil {
		return o.fail(report, errtypes.Input("transfer.run", err, "unable to list %s", tc.SourceRoot))
	}

	o.notify(StageCatalog, "Checking endpoints of "+creds.Service.Username)
	if err := o.catalog.Refresh(ctx, creds.Service.Username); err != nil {
		return o.fail(report, err)
	}

	if !o.catalog.IsConnected(tc.SourceEndpoint) {
		msg := fmt.Sprintf("%s needs to be connected for data to transfer to %s", tc.SourceEndpoint, tc.DestinationEndpoint)
		o.notify(StageSourceUnavailable, msg)
		o.log.Warn("source endpoint is not connected", slog.String("source", tc.SourceEndpoint))
		report.Status = StatusSourceUnavailable
		report.Err = errtypes.SourceUnavailable("transfer.run", "%s is not connected", tc.SourceEndpoint)
		return report
	}

	dest := activation.Request{
		Endpoint:      tc.DestinationEndpoint,
		Username:      creds.Destination.Username,
		Password:      creds.Destination.Password,
		ProxyHostname: creds.ProxyHostname,
	}
	if !o.catalog.IsActivated(tc.DestinationEndpoint) {
		o.notify(StageActivation, fmt.Sprintf("%s needs to be activated for data to transfer from %s", tc.DestinationEndpoint, tc.SourceEndpoint))
		// the submitter activates again and decides
		if _, err := o.activator.Activate(ctx, dest); err != nil {
			o.log.Warn("proactive destination activation failed", slog.Any("error", err))
		}
	}

	o.notify(StageTransfer, fmt.Sprintf("Transferring data from %s to %s", tc.SourceEndpoint, tc.DestinationEndpoint))
	res, err := o.submitter.Submit(ctx, SubmitRequest{
		Source: activation.Request{
			Endpoint: tc.SourceEndpoint,
			Username: creds.Source.Username,
			Password: creds.Source.Password,
		},
		Destination:     dest,
		DestinationRoot: tc.DestinationRoot,
		Files:           files,
		Label:           report.Label,
	})
	report.Status = res.Status
	report.SubmissionID = res.SubmissionID
	report.TaskID = res.TaskID
	if err != nil {
		return o.fail(report, err)
	}

	report.Files = relativeFiles(tc.SourceRoot, files)
	o.notify(StageComplete, fmt.Sprintf("Transfer complete: task %s, %d files", res.TaskID, len(files)))
	return report
}

func (o *Orchestrator) fail(report *Report, err error) *Report {
	report.Status = StatusFail
	report.Err = err
	o.log.Error("transfer failed", slog.String("kind", errtypes.KindOf(err).String()), slog.Any("error", err))
	o.notify(StageFailed, "Transfer failed: "+err.Error())
	return report
}

func relativeFiles(root string, files []string) []string {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			rel = baseName(f)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}
