// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package activation

import "strings"

type State int

const (
	Unchecked State = iota
	Checking
	Activated
	Failed
)

func (s State) String() string {
	switch s {
	case Checking:
		return "checking"
	case Activated:
		return "activated"
	case Failed:
		return "failed"
	default:
		return "unchecked"
	}
}

func (s State) Terminal() bool { return s == Activated || s == Failed }

type Strategy string

const (
	StrategyAuto     Strategy = "auto"
	StrategyPassword Strategy = "password"
	StrategyProxy    Strategy = "proxy"
)

// Request carries the credentials for one endpoint. Password and
// ProxyHostname are ignored when Username is empty.
type Request struct {
	Endpoint      string
	Username      string
	Password      string
	ProxyHostname string
}

// SelectStrategy picks exactly one strategy: auto without a username,
// proxy when a proxy hostname is set, password otherwise.
func SelectStrategy(req Request) Strategy {
	switch {
	case strings.TrimSpace(req.Username) == "":
		return StrategyAuto
	case strings.TrimSpace(req.ProxyHostname) != "":
		return StrategyProxy
	default:
		return StrategyPassword
	}
}

// Attempt is the outcome of one Activate call. Nothing is cached between
// attempts; a Failed attempt must be retried by the caller.
type Attempt struct {
	Endpoint   string
	Strategy   Strategy
	State      State
	Code       string
	Message    string
	ExpireTime string
}

func (a *Attempt) transition(to State) {
	if a.State.Terminal() {
		return
	}
	a.State = to
}

// Requirement is one entry of an endpoint's activation requirements.
type Requirement struct {
	DataType    string `json:"DATA_TYPE,omitempty"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Value       string `json:"value"`
	Required    bool   `json:"required"`
	Private     bool   `json:"private"`
	UIName      string `json:"ui_name,omitempty"`
	Description string `json:"description,omitempty"`
}

type Requirements struct {
	DataType                string        `json:"DATA_TYPE"`
	Length                  int           `json:"length,omitempty"`
	ExpiresIn               int           `json:"expires_in,omitempty"`
	ExpireTime              string        `json:"expire_time,omitempty"`
	AutoActivationSupported bool          `json:"auto_activation_supported,omitempty"`
	Data                    []Requirement `json:"DATA"`
}

type activationResult struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	ExpireTime string `json:"expire_time"`
}

const (
	// requirement type used for proxy credential activation
	requirementProxy = "myproxy"

	fieldHostname   = "hostname"
	fieldUsername   = "username"
	fieldPassphrase = "passphrase"

	autoActivationFailedPrefix = "AutoActivationFailed"
)
