// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

const (
	IniName            = ".waveform-transfer.ini"
	IniPathEnv         = "WAVEFORM_TRANSFER_CONFIG"
	IniSource          = "ini_source"
	CurrentEnvironment = "current_environment"
	UpdatedEnvKey      = "updated_environment"
	RunId              = "run_id"

	TransferBaseURL     = "transfer_base_url"
	TransferAPIVersion  = "transfer_api_version"
	TransferAccessToken = "transfer_access_token"
	TransferTimeout     = "transfer_timeout"
	CertFile            = "cert_file"
	KeyFile             = "key_file"
	CAFile              = "ca_file"

	Oauth2TokenEndpoint = "oauth2_token_endpoint"
	Oauth2ClientId      = "oauth2_client_id"
	Oauth2ClientSecret  = "oauth2_client_secret"
	Oauth2Scopes        = "oauth2_scopes"

	ServiceUsername     = "service_username"
	ServicePassword     = "service_password"
	SourceUsername      = "source_username"
	SourcePassword      = "source_password"
	DestinationUsername = "destination_username"
	DestinationPassword = "destination_password"
	ProxyHostname       = "proxy_hostname"

	SourceEndpoint      = "source_endpoint"
	SourceRoot          = "source_root"
	SourceOS            = "source_os"
	DestinationEndpoint = "destination_endpoint"
	DestinationRoot     = "destination_root"
	TransferLabel       = "transfer_label"
	ServerTieBreak      = "server_tie_break"

	AwsAccessKeyId     = "aws_access_key_id"
	AwsSecretAccessKey = "aws_secret_access_key"
	AwsSessionToken    = "aws_session_token"
	AwsRegion          = "aws_region"
	AwsEndpointURL     = "aws_endpoint_url"
	S3Bucket           = "s3_bucket"
	S3Prefix           = "s3_prefix"

	LogLevel        = "log_level"
	LogFormat       = "log_format"
	LogFile         = "log_file"
	MetricsTextfile = "metrics_textfile"
)
