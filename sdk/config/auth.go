// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
)

// NewHTTPClient builds the client used for every call to the transfer service.
//
// Authentication, in order of preference:
//   - Core.AccessToken: sent as a static bearer token by httpCore.Do
//   - Auth.TokenURL: password grant with the service account, token refreshed by oauth2
//   - Core.CertFile/KeyFile: x509 client certificate only
func NewHTTPClient(ctx context.Context, conf Config) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	tlsConfig, err := buildTLSConfig(conf.Core)
	if err != nil {
		return nil, err
	}
	if tlsConfig != nil {
		transport.TLSClientConfig = tlsConfig
	}
	base := &http.Client{Transport: transport, Timeout: conf.Core.Timeout}

	if conf.Core.AccessToken != "" || conf.Auth.TokenURL == "" {
		return base, nil
	}

	if conf.Credentials.Service.Username == "" || conf.Credentials.Service.Password == "" {
		return nil, errors.New("service username and password are required for the password grant")
	}
	oauthCfg := &oauth2.Config{
		ClientID:     conf.Auth.ClientID,
		ClientSecret: conf.Auth.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: conf.Auth.TokenURL},
		Scopes:       conf.Auth.Scopes,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	tok, err := oauthCfg.PasswordCredentialsToken(ctx, conf.Credentials.Service.Username, conf.Credentials.Service.Password)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	client := oauth2.NewClient(ctx, oauthCfg.TokenSource(ctx, tok))
	client.Timeout = conf.Core.Timeout
	return client, nil
}

func buildTLSConfig(core CoreConfig) (*tls.Config, error) {
	if core.CertFile == "" && core.KeyFile == "" && core.CAFile == "" {
		return nil, nil
	}
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if core.CAFile != "" {
		caCert, err := os.ReadFile(core.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("no certificates found in %s", core.CAFile)
		}
		tlsConfig.RootCAs = pool
	}

	if core.CertFile != "" || core.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(core.CertFile, core.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	return tlsConfig, nil
}
