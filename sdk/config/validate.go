// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cvrgrid/waveform-transfer/sdk/errtypes"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the credentials bundle before any remote call is made.
func (c Credentials) Validate() error {
	if c.Service.Username == "" {
		return errtypes.Input("config.credentials", nil, "service username is required")
	}
	if err := validate.Struct(c); err != nil {
		return errtypes.Input("config.credentials", nil, "%s", describe(err))
	}
	return nil
}

func (t TransferConfig) Validate() error {
	if err := validate.Struct(t); err != nil {
		return errtypes.Input("config.transfer", nil, "%s", describe(err))
	}
	return nil
}

// describe flattens validator output into one line without echoing values,
// since some of the validated fields are passwords.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), rule))
	}
	return strings.Join(parts, "; ")
}
