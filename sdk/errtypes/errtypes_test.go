// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package errtypes_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cvrgrid/waveform-transfer/sdk/errtypes"
)

func TestKindSurvivesWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := errtypes.Catalog("catalog.refresh", cause, "listing %s", "personal")
	wrapped := fmt.Errorf("run: %w", err)

	assert.True(t, errtypes.IsCatalog(wrapped))
	assert.False(t, errtypes.IsActivation(wrapped))
	assert.True(t, errors.Is(wrapped, errtypes.ErrCatalog))
	assert.False(t, errors.Is(wrapped, errtypes.ErrSubmission))
	assert.True(t, errors.Is(wrapped, cause))
	assert.Equal(t, errtypes.KindCatalog, errtypes.KindOf(wrapped))
}

func TestErrorMessage(t *testing.T) {
	err := errtypes.Input("transfer.translate", nil, "path %q has no drive letter", `data\x.dat`)
	assert.Equal(t, `transfer.translate: input error: path "data\\x.dat" has no drive letter`, err.Error())

	err = errtypes.SourceUnavailable("", "owner#laptop is not connected")
	assert.Equal(t, "source unavailable: owner#laptop is not connected", err.Error())
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, errtypes.KindUnknown, errtypes.KindOf(errors.New("boom")))
	assert.Equal(t, errtypes.KindUnknown, errtypes.KindOf(nil))
}
