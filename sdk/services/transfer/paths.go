// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"runtime"
	"strings"

	"github.com/cvrgrid/waveform-transfer/sdk/config"
	"github.com/cvrgrid/waveform-transfer/sdk/errtypes"
	"github.com/cvrgrid/waveform-transfer/sdk/logger"
)

// Mode is the client generation of a Windows personal endpoint.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeNew
	// older clients expose drives under /cygdrive
	ModeOld
)

func (m Mode) String() string {
	switch m {
	case ModeNew:
		return "new"
	case ModeOld:
		return "old"
	default:
		return "unknown"
	}
}

const cygdrivePrefix = "/cygdrive"

// PathTranslator turns local paths into source paths for the transfer
// service. One translator serves one run: the client generation is probed
// at most once and never reset.
type PathTranslator struct {
	http     config.CoreHTTP
	endpoint string
	goos     string
	mode     Mode
	log      *slog.Logger
}

// NewPathTranslator builds a translator for paths on sourceEndpoint, a host
// running goos (empty means this host).
func NewPathTranslator(http config.CoreHTTP, sourceEndpoint, goos string, log *slog.Logger) *PathTranslator {
	if goos == "" {
		goos = runtime.GOOS
	}
	if log == nil {
		log = logger.Discard()
	}
	return &PathTranslator{
		http:     http,
		endpoint: sourceEndpoint,
		goos:     goos,
		log:      log.With(slog.String("component", "path_translator")),
	}
}

func (t *PathTranslator) Mode() Mode { return t.mode }

// ForceMode skips the probe.
func (t *PathTranslator) ForceMode(m Mode) { t.mode = m }

func (t *PathTranslator) Translate(ctx context.Context, local string) (string, error) {
	if t.goos != "windows" {
		return local, nil
	}

	out, err := windowsPath(local)
	if err != nil {
		return "", err
	}
	if t.mode == ModeUnknown {
		t.mode = t.probe(ctx, path.Dir(out))
	}
	if t.mode == ModeOld {
		out = cygdrivePrefix + out
	}
	return out, nil
}

// windowsPath maps C:\data\x.dat to /c/data/x.dat.
func windowsPath(local string) (string, error) {
	i := strings.Index(local, ":")
	if i <= 0 {
		return "", errtypes.Input("transfer.path", nil, "%q is not an absolute windows path", local)
	}
	drive := strings.ToLower(local[:i])
	rest := strings.ReplaceAll(local[i+1:], `\`, "/")
	return "/" + drive + rest, nil
}

// probe lists dir on the source endpoint. A 400 means an old client; any
// other outcome, errors included, is taken as a new one.
func (t *PathTranslator) probe(ctx context.Context, dir string) Mode {
	url := t.http.BuildURL("endpoint", t.endpoint, "ls", map[string]string{"path": dir})
	_, status, err := t.http.Do(ctx, http.MethodGet, url, nil)

	log := t.log.With(slog.String("endpoint", t.endpoint), slog.String("path", dir))
	if status == http.StatusBadRequest {
		log.Info("older client generation detected, using cygdrive paths")
		return ModeOld
	}
	if err != nil {
		log.Warn("client generation probe failed, assuming a new client", slog.Any("error", err))
	} else {
		log.Info("newer client generation detected")
	}
	return ModeNew
}
