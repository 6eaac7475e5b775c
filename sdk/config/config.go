// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package config

import "time"

// Config is everything handed to the SDK (no viper/INI here).
type Config struct {
	Core        CoreConfig
	Auth        AuthConfig
	Credentials Credentials
	Transfer    TransferConfig
	S3          S3Config
	Log         LogConfig
	Metrics     MetricsConfig
}

// CoreConfig describes how to reach the transfer service.
type CoreConfig struct {
	BaseURL     string
	APIVersion  string
	AccessToken string
	// x509 client authentication, all optional
	CertFile string
	KeyFile  string
	CAFile   string
	// zero means no client-side timeout
	Timeout time.Duration
}

// AuthConfig is used to obtain a bearer token when CoreConfig.AccessToken is empty.
type AuthConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

type Account struct {
	Username string `validate:"omitempty"`
	Password string `validate:"required_with=Username"`
}

// Credentials are supplied once per run and never mutated mid-transfer.
type Credentials struct {
	// online transfer service account; the password is only needed for the
	// password grant, so it is checked where the token is obtained
	Service Account `validate:"-"`
	// an empty source/destination username selects auto-activation
	Source      Account
	Destination Account
	// proxy credential server for the destination endpoint, optional
	ProxyHostname string `validate:"omitempty,hostname_rfc1123|hostname_port"`
}

type TransferConfig struct {
	SourceEndpoint      string `validate:"required,contains=#"`
	SourceRoot          string `validate:"required"`
	DestinationEndpoint string `validate:"required,contains=#"`
	DestinationRoot     string `validate:"required"`
	Label               string
	// OS of the machine running the source endpoint; empty means this host
	SourceOS string `validate:"omitempty,oneof=windows linux darwin freebsd"`
	// "last" (default) or "any"
	ServerTieBreak string `validate:"omitempty,oneof=last any"`
}

type S3Config struct {
	AccessKey   string
	SecretKey   string
	AccessToken string
	Region      string
	EndpointURL string
	Bucket      string
	Prefix      string
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

type MetricsConfig struct {
	Textfile string
}
