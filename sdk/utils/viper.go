// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"github.com/cvrgrid/waveform-transfer/sdk/config"
)

// EnvDumpPrefix: optional prefix for env lookup (e.g., "WAVEFORM")
const EnvDumpPrefix = ""

// Config holds all logical keys. Tags:
// - vkey: Viper key
// - env: canonical env name (UPPER_SNAKE). If empty, derived from vkey
// - persist: "true" to write the key into the INI
// - default: optional default to set if key is unset
// - secret: "true" if sensitive, never persisted nor printed
// - bind: "false" to NOT bind from env (we still can set defaults)
// - props: key name accepted from legacy server.properties files
type Config struct {
	TransferBaseURL     string `vkey:"transfer_base_url"     env:"TRANSFER_BASE_URL"     persist:"true" default:"https://transfer.api.globusonline.org"`
	TransferAPIVersion  string `vkey:"transfer_api_version"  env:"TRANSFER_API_VERSION"  persist:"true" default:"v0.10"`
	TransferAccessToken string `vkey:"transfer_access_token" env:"TRANSFER_ACCESS_TOKEN" secret:"true"`
	TransferTimeout     string `vkey:"transfer_timeout"      env:"TRANSFER_TIMEOUT"      persist:"true" default:"60s"`
	CertFile            string `vkey:"cert_file"             env:"TRANSFER_CERT_FILE"    persist:"true" props:"certFile"`
	KeyFile             string `vkey:"key_file"              env:"TRANSFER_KEY_FILE"     persist:"true" props:"keyFile"`
	CAFile              string `vkey:"ca_file"               env:"TRANSFER_CA_FILE"      persist:"true" props:"caFile"`

	// Oauth2
	Oauth2TokenEndpoint string `vkey:"oauth2_token_endpoint" env:"OAUTH2_TOKEN_ENDPOINT" persist:"true"`
	Oauth2ClientId      string `vkey:"oauth2_client_id"      env:"OAUTH2_CLIENT_ID"      persist:"true"`
	Oauth2ClientSecret  string `vkey:"oauth2_client_secret"  env:"OAUTH2_CLIENT_SECRET"  secret:"true"`
	Oauth2Scopes        string `vkey:"oauth2_scopes"         env:"OAUTH2_SCOPES"         persist:"true"`

	// Accounts
	ServiceUsername     string `vkey:"service_username"     env:"TRANSFER_USERNAME"    persist:"true" props:"globusOnlineUsername"`
	ServicePassword     string `vkey:"service_password"     env:"TRANSFER_PASSWORD"    secret:"true"  props:"globusOnlinePassword"`
	SourceUsername      string `vkey:"source_username"      env:"SOURCE_USERNAME"      persist:"true" props:"sourceUsername"`
	SourcePassword      string `vkey:"source_password"      env:"SOURCE_PASSWORD"      secret:"true"  props:"sourcePassword"`
	DestinationUsername string `vkey:"destination_username" env:"DESTINATION_USERNAME" persist:"true" props:"destinationUsername"`
	DestinationPassword string `vkey:"destination_password" env:"DESTINATION_PASSWORD" secret:"true"  props:"destinationPassword"`
	ProxyHostname       string `vkey:"proxy_hostname"       env:"PROXY_HOSTNAME"       persist:"true"`

	// Transfer
	SourceEndpoint      string `vkey:"source_endpoint"      env:"SOURCE_ENDPOINT"      persist:"true" props:"sourceEP"`
	SourceRoot          string `vkey:"source_root"          env:"SOURCE_ROOT"          persist:"true" props:"sourceRoot"`
	SourceOS            string `vkey:"source_os"            env:"SOURCE_OS"            persist:"true"`
	DestinationEndpoint string `vkey:"destination_endpoint" env:"DESTINATION_ENDPOINT" persist:"true" props:"destinationEP"`
	DestinationRoot     string `vkey:"destination_root"     env:"DESTINATION_ROOT"     persist:"true" props:"destinationRoot"`
	TransferLabel       string `vkey:"transfer_label"       env:"TRANSFER_LABEL"`
	ServerTieBreak      string `vkey:"server_tie_break"     env:"SERVER_TIE_BREAK"     persist:"true" default:"last"`

	// Manifest store
	AwsAccessKeyID     string `vkey:"aws_access_key_id"     env:"AWS_ACCESS_KEY_ID"     secret:"true"`
	AwsSecretAccessKey string `vkey:"aws_secret_access_key" env:"AWS_SECRET_ACCESS_KEY" secret:"true"`
	AwsSessionToken    string `vkey:"aws_session_token"     env:"AWS_SESSION_TOKEN"     secret:"true"`
	AwsRegion          string `vkey:"aws_region"            env:"AWS_REGION"            persist:"true"`
	AwsEndpointURL     string `vkey:"aws_endpoint_url"      env:"AWS_ENDPOINT_URL"      persist:"true"`
	S3Bucket           string `vkey:"s3_bucket"             env:"S3_BUCKET"             persist:"true"`
	S3Prefix           string `vkey:"s3_prefix"             env:"S3_PREFIX"             persist:"true" default:"manifests"`

	LogLevel        string `vkey:"log_level"        env:"LOG_LEVEL"        persist:"true" default:"info"`
	LogFormat       string `vkey:"log_format"       env:"LOG_FORMAT"       persist:"true" default:"text"`
	LogFile         string `vkey:"log_file"         env:"LOG_FILE"         persist:"true"`
	MetricsTextfile string `vkey:"metrics_textfile" env:"METRICS_TEXTFILE" persist:"true"`

	IniSource          string `vkey:"ini_source"          env:"INI_SOURCE"          persist:"true"`
	UpdatedEnvironment string `vkey:"updated_environment" env:"UPDATED_ENVIRONMENT" persist:"true" bind:"false"`
	CurrentEnvironment string `vkey:"current_environment" env:"CURRENT_ENVIRONMENT" persist:"false"`
	RunId              string `vkey:"run_id"              env:"RUN_ID"              persist:"false"`
}

// resolveEnvName: --env > "default"
func resolveEnvName(optionalEnv ...string) string {
	if len(optionalEnv) > 0 && optionalEnv[0] != "" && strings.ToLower(optionalEnv[0]) != "null" {
		return optionalEnv[0]
	}
	return "default"
}

// mirror PREFIX_FOO -> FOO (optional)
func mirrorPrefix(prefix string) {
	if prefix == "" {
		return
	}
	upPrefix := strings.ToUpper(prefix) + "_"
	for _, e := range os.Environ() {
		kv := strings.SplitN(e, "=", 2)
		if len(kv) != 2 {
			continue
		}
		name, val := kv[0], kv[1]
		if strings.HasPrefix(name, upPrefix) {
			unpref := strings.TrimPrefix(name, upPrefix)
			if os.Getenv(unpref) == "" {
				_ = os.Setenv(unpref, val)
			}
		}
	}
}

func eachKey(fn func(f reflect.StructField, key string)) {
	rt := reflect.TypeOf(Config{})
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if key := f.Tag.Get("vkey"); key != "" {
			fn(f, key)
		}
	}
}

func envVarName(f reflect.StructField, key string) string {
	if env := f.Tag.Get("env"); env != "" {
		return env
	}
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Bind env for all fields of Config using struct tags.
func BindEnvFromStruct(prefix string) {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	mirrorPrefix(prefix)

	eachKey(func(f reflect.StructField, key string) {
		if f.Tag.Get("bind") != "false" {
			_ = viper.BindEnv(key, envVarName(f, key))
		}
		if def := f.Tag.Get("default"); def != "" && !viper.IsSet(key) {
			viper.SetDefault(key, def)
		}
	})
}

// IsSecret reports whether key holds a credential.
func IsSecret(key string) bool {
	secret := false
	eachKey(func(f reflect.StructField, k string) {
		if k == key && f.Tag.Get("secret") == "true" {
			secret = true
		}
	})
	return secret
}

func persistInto(sec *ini.Section) {
	eachKey(func(f reflect.StructField, key string) {
		if f.Tag.Get("persist") != "true" || f.Tag.Get("secret") == "true" {
			return
		}
		if val := viper.GetString(key); val != "" {
			sec.Key(key).SetValue(val)
		}
	})
}

// Write a new INI with only non-secret fields marked persist:"true".
func WriteIniFromStruct(iniPath, envName string) error {
	cfg := ini.Empty()
	cfg.Section("DEFAULT").Key(CurrentEnvironment).SetValue(envName)
	persistInto(cfg.Section(envName))
	return cfg.SaveTo(iniPath)
}

// UpdateIniFromStruct updates or creates the envName section of the config
// file from current Viper values. Secrets are never written.
func UpdateIniFromStruct(envName string) error {
	cfg, err := LoadIni(true)
	if err != nil {
		return err
	}
	sec := cfg.Section(envName)
	persistInto(sec)

	if !cfg.Section("DEFAULT").HasKey(CurrentEnvironment) {
		cfg.Section("DEFAULT").Key(CurrentEnvironment).SetValue(envName)
	}
	sec.Key(UpdatedEnvKey).SetValue(time.Now().UTC().Format(time.RFC3339))
	return SaveIni(cfg)
}

func propsAliases() map[string]string {
	aliases := map[string]string{}
	eachKey(func(f reflect.StructField, key string) {
		if p := f.Tag.Get("props"); p != "" {
			aliases[strings.ToLower(p)] = key
		}
	})
	return aliases
}

// Load [DEFAULT] + [env] into Viper (TOML in-memory). ENV can still override on Get().
// Legacy property names are renamed to their viper key.
func loadIniSectionIntoViper(cfg *ini.File, env string) error {
	def := cfg.Section("DEFAULT")
	selected := def
	if env != "" && cfg.HasSection(env) {
		selected = cfg.Section(env)
		slog.Debug("using config environment", slog.String("env", env))
	} else if env == "" || strings.EqualFold(env, "DEFAULT") {
		slog.Debug("using config environment", slog.String("env", "DEFAULT"))
	} else {
		slog.Warn("config environment not found, falling back to DEFAULT", slog.String("env", env))
	}

	aliases := propsAliases()
	merged := make(map[string]string)
	put := func(k *ini.Key) {
		name := k.Name()
		if key, ok := aliases[strings.ToLower(name)]; ok {
			name = key
		}
		merged[name] = k.Value()
	}
	for _, k := range def.Keys() {
		put(k)
	}
	if selected != nil && selected != def {
		for _, k := range selected.Keys() {
			put(k)
		}
	}

	var buf bytes.Buffer
	for k, v := range merged {
		vSafe := strings.ReplaceAll(strings.ReplaceAll(v, `\`, `\\`), `"`, `\"`)
		_, _ = fmt.Fprintf(&buf, "%s = \"%s\"\n", k, vSafe)
	}
	viper.SetConfigType("toml")
	return viper.ReadConfig(&buf)
}

// RegisterIniCfgWithViper:
// 1) bind ENV from struct (live)
// 2) load INI or bootstrap it from ENV (writes only target env)
// 3) load active section into Viper and set current_environment
func RegisterIniCfgWithViper(optionalEnv ...string) error {
	iniPath := getIniPath()

	BindEnvFromStruct(EnvDumpPrefix)

	cfg, err := loadIniFile(iniPath)
	if err != nil {
		slog.Debug("config file not found, reading environment", slog.String("path", iniPath))
		envName, bootErr := bootstrapFromEnv(iniPath, optionalEnv...)
		if bootErr != nil {
			slog.Debug("config bootstrap skipped", slog.Any("error", bootErr))
			if envName == "" {
				envName = resolveEnvName(optionalEnv...)
			}
			viper.Set(CurrentEnvironment, envName)
			return nil
		}
		cfg, err = loadIniFile(iniPath)
		if err != nil {
			slog.Warn("config written but cannot be reloaded, using environment only", slog.Any("error", err))
			return nil
		}
	}

	// active env: --env > DEFAULT.current_environment > default
	env := resolveEnvName(optionalEnv...)
	if env == "default" {
		if v := cfg.Section("DEFAULT").Key(CurrentEnvironment).String(); v != "" {
			env = v
		}
	}

	if err := loadIniSectionIntoViper(cfg, env); err != nil {
		return fmt.Errorf("failed to load INI into viper: %w", err)
	}
	viper.Set(CurrentEnvironment, env)
	return nil
}

// Bootstrap (when INI is missing): read all variables from OS envs using Config struct.
// - honors `bind:"false"` (skip ENV read for that key)
// - applies `default:"..."` only if key is unset
func bootstrapFromEnv(iniPath string, optionalEnv ...string) (string, error) {
	eachKey(func(f reflect.StructField, key string) {
		if !strings.EqualFold(f.Tag.Get("bind"), "false") {
			if val, ok := os.LookupEnv(envVarName(f, key)); ok {
				viper.Set(key, val)
				return
			}
		}
		if def := f.Tag.Get("default"); def != "" && !viper.IsSet(key) {
			viper.SetDefault(key, def)
		}
	})

	if viper.GetString(ServiceUsername) == "" {
		return "", fmt.Errorf("missing %s: set it in env or in %s", ServiceUsername, iniPath)
	}

	envName := resolveEnvName(optionalEnv...)
	viper.Set(CurrentEnvironment, envName)

	// the file was built from env, not written by hand
	viper.Set(IniSource, "env")

	if err := WriteIniFromStruct(iniPath, envName); err != nil {
		return "", fmt.Errorf("write ini failed: %w", err)
	}

	if _, err := loadIniFile(iniPath); err != nil {
		return "", fmt.Errorf("ini written but cannot reload: %w", err)
	}

	return envName, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// BuildConfig materialises the SDK configuration from Viper.
func BuildConfig() config.Config {
	timeout, err := time.ParseDuration(viper.GetString(TransferTimeout))
	if err != nil {
		timeout = 0
	}
	return config.Config{
		Core: config.CoreConfig{
			BaseURL:     viper.GetString(TransferBaseURL),
			APIVersion:  viper.GetString(TransferAPIVersion),
			AccessToken: viper.GetString(TransferAccessToken),
			CertFile:    viper.GetString(CertFile),
			KeyFile:     viper.GetString(KeyFile),
			CAFile:      viper.GetString(CAFile),
			Timeout:     timeout,
		},
		Auth: config.AuthConfig{
			TokenURL:     viper.GetString(Oauth2TokenEndpoint),
			ClientID:     viper.GetString(Oauth2ClientId),
			ClientSecret: viper.GetString(Oauth2ClientSecret),
			Scopes:       splitList(viper.GetString(Oauth2Scopes)),
		},
		Credentials: config.Credentials{
			Service: config.Account{
				Username: viper.GetString(ServiceUsername),
				Password: viper.GetString(ServicePassword),
			},
			Source: config.Account{
				Username: viper.GetString(SourceUsername),
				Password: viper.GetString(SourcePassword),
			},
			Destination: config.Account{
				Username: viper.GetString(DestinationUsername),
				Password: viper.GetString(DestinationPassword),
			},
			ProxyHostname: viper.GetString(ProxyHostname),
		},
		Transfer: config.TransferConfig{
			SourceEndpoint:      viper.GetString(SourceEndpoint),
			SourceRoot:          viper.GetString(SourceRoot),
			DestinationEndpoint: viper.GetString(DestinationEndpoint),
			DestinationRoot:     viper.GetString(DestinationRoot),
			Label:               viper.GetString(TransferLabel),
			SourceOS:            viper.GetString(SourceOS),
			ServerTieBreak:      viper.GetString(ServerTieBreak),
		},
		S3: config.S3Config{
			AccessKey:   viper.GetString(AwsAccessKeyId),
			SecretKey:   viper.GetString(AwsSecretAccessKey),
			AccessToken: viper.GetString(AwsSessionToken),
			Region:      viper.GetString(AwsRegion),
			EndpointURL: viper.GetString(AwsEndpointURL),
			Bucket:      viper.GetString(S3Bucket),
			Prefix:      viper.GetString(S3Prefix),
		},
		Log: config.LogConfig{
			Level:  viper.GetString(LogLevel),
			Format: viper.GetString(LogFormat),
			File:   viper.GetString(LogFile),
		},
		Metrics: config.MetricsConfig{
			Textfile: viper.GetString(MetricsTextfile),
		},
	}
}
