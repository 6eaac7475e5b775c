// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"fmt"

	"github.com/cvrgrid/waveform-transfer/sdk/services/activation"
)

type Status int

const (
	StatusOK Status = iota
	StatusFail
	// the personal endpoint is offline, nothing can be done remotely
	StatusSourceUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusFail:
		return "FAIL"
	case StatusSourceUnavailable:
		return "SOURCE_UNAVAILABLE"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	for _, c := range []Status{StatusOK, StatusFail, StatusSourceUnavailable} {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown transfer status %q", string(b))
}

// -------- Wire documents --------

const (
	dataTypeTransfer     = "transfer"
	dataTypeTransferItem = "transfer_item"
)

type Item struct {
	DataType            string `json:"DATA_TYPE"`
	SourceEndpoint      string `json:"source_endpoint"`
	SourcePath          string `json:"source_path"`
	DestinationEndpoint string `json:"destination_endpoint"`
	DestinationPath     string `json:"destination_path"`
}

// Document is the whole batch, posted once.
type Document struct {
	DataType     string `json:"DATA_TYPE"`
	SubmissionID string `json:"submission_id"`
	Label        string `json:"label,omitempty"`
	Data         []Item `json:"DATA"`
}

type submissionID struct {
	Value string `json:"value"`
}

type transferResult struct {
	TaskID       string `json:"task_id"`
	SubmissionID string `json:"submission_id"`
	Code         string `json:"code"`
	Message      string `json:"message"`
}

// -------- Submit --------

type SubmitRequest struct {
	Source      activation.Request
	Destination activation.Request
	// concatenated with each file name as is, must end with '/'
	DestinationRoot string
	// absolute local paths
	Files []string
	Label string
}

type SubmitResult struct {
	Status       Status
	SubmissionID string
	TaskID       string
	Code         string
	Message      string
	Items        int
}

// -------- Orchestrate --------

type Stage string

const (
	StageCatalog           Stage = "catalog"
	StageSourceUnavailable Stage = "source_unavailable"
	StageActivation        Stage = "activation"
	StageTransfer          Stage = "transfer"
	StageComplete          Stage = "complete"
	StageFailed            Stage = "failed"
)

// Notifier receives the short human readable status line of each stage.
type Notifier func(stage Stage, message string)

// Report is the outcome of one run. Err is set whenever Status is not OK.
type Report struct {
	RunID           string
	Status          Status
	Source          string
	Destination     string
	DestinationRoot string
	Label           string
	// paths relative to the source root, in submission order
	Files        []string
	SubmissionID string
	TaskID       string
	Err          error
}
