// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/cvrgrid/waveform-transfer/sdk/config"
)

// Manifest lists what one successful run transferred, for downstream
// consumers that start processing once the files land.
type Manifest struct {
	RunID           string    `json:"run_id,omitempty"`
	TaskID          string    `json:"task_id"`
	SubmissionID    string    `json:"submission_id"`
	Status          Status    `json:"status"`
	Label           string    `json:"label,omitempty"`
	Source          string    `json:"source_endpoint"`
	Destination     string    `json:"destination_endpoint"`
	DestinationRoot string    `json:"destination_root"`
	Files           []string  `json:"files"`
	GeneratedAt     time.Time `json:"generated_at"`
}

func NewManifest(r *Report) (*Manifest, error) {
	if r == nil || r.Status != StatusOK {
		return nil, errors.New("manifest is only available for a successful transfer")
	}
	return &Manifest{
		RunID:           r.RunID,
		TaskID:          r.TaskID,
		SubmissionID:    r.SubmissionID,
		Status:          r.Status,
		Label:           r.Label,
		Source:          r.Source,
		Destination:     r.Destination,
		DestinationRoot: r.DestinationRoot,
		Files:           append([]string(nil), r.Files...),
		GeneratedAt:     time.Now().UTC(),
	}, nil
}

// Name is the object name used when publishing.
func (m *Manifest) Name() string {
	id := m.TaskID
	if id == "" {
		id = m.SubmissionID
	}
	return id + ".yaml"
}

func (m *Manifest) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

func (m *Manifest) YAML() ([]byte, error) {
	return yaml.Marshal(m)
}

// Publish uploads the YAML manifest and returns its s3:// URI.
func (m *Manifest) Publish(ctx context.Context, s3 *config.S3Client) (string, error) {
	data, err := m.YAML()
	if err != nil {
		return "", fmt.Errorf("manifest encoding failed: %w", err)
	}
	return s3.PutManifest(ctx, m.Name(), "application/yaml", data)
}

// WriteFile writes JSON when path ends in .json, YAML otherwise.
func (m *Manifest) WriteFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = m.JSON()
	} else {
		data, err = m.YAML()
	}
	if err != nil {
		return fmt.Errorf("manifest encoding failed: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
