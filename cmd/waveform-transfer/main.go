// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cvrgrid/waveform-transfer/sdk/config"
	"github.com/cvrgrid/waveform-transfer/sdk/logger"
	"github.com/cvrgrid/waveform-transfer/sdk/metrics"
	"github.com/cvrgrid/waveform-transfer/sdk/services/transfer"
	"github.com/cvrgrid/waveform-transfer/sdk/utils"
)

const usage = `Usage: waveform-transfer [flags] [sourceRoot destinationRoot serviceUsername servicePassword destinationUsername destinationPassword [proxyHostname]]

Transfers every file directly under sourceRoot from the personal endpoint to the
destination endpoint. Without positional arguments the values are read from the
config file (%s) and the environment.

Flags:
`

const (
	exitOK                = 0
	exitFail              = 1
	exitUsage             = 2
	exitSourceUnavailable = 3
)

// positional arguments, in order
var positionalKeys = []string{
	utils.SourceRoot,
	utils.DestinationRoot,
	utils.ServiceUsername,
	utils.ServicePassword,
	utils.DestinationUsername,
	utils.DestinationPassword,
	utils.ProxyHostname,
}

type options struct {
	configPath    string
	env           string
	listEndpoints bool
	discover      bool
	manifest      string
	publish       bool
	save          bool
	logLevel      string
	output        string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opts options
	fs := pflag.NewFlagSet("waveform-transfer", pflag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "config file path (default ~/"+utils.IniName+")")
	fs.StringVarP(&opts.env, "env", "e", "", "config file section to use")
	fs.BoolVar(&opts.listEndpoints, "list-endpoints", false, "print the endpoints of the service account and exit")
	fs.BoolVar(&opts.discover, "discover", false, "print the files under the source root and exit")
	fs.StringVar(&opts.manifest, "manifest", "", "write the transfer manifest to this file (.json or .yaml)")
	fs.BoolVar(&opts.publish, "publish", false, "publish the transfer manifest to the configured S3 bucket")
	fs.BoolVar(&opts.save, "save", false, "store the effective settings, without passwords, in the config file")
	fs.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVarP(&opts.output, "output", "o", "short", "short, json or yaml")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, usage, utils.IniName)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}

	// existing process env wins over .env
	_ = godotenv.Load()

	if opts.configPath != "" {
		utils.SetIniPath(opts.configPath)
	}
	if err := utils.RegisterIniCfgWithViper(opts.env); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFail
	}

	positional := fs.Args()
	if len(positional) > 0 && (len(positional) < 6 || len(positional) > 7) {
		fs.Usage()
		return exitUsage
	}
	for i, v := range positional {
		viper.Set(positionalKeys[i], v)
	}
	if opts.logLevel != "" {
		viper.Set(utils.LogLevel, opts.logLevel)
	}

	if opts.save {
		env := viper.GetString(utils.CurrentEnvironment)
		if err := utils.UpdateIniFromStruct(env); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitFail
		}
	}

	conf := utils.BuildConfig()
	if missing := missingSettings(conf, opts); len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "missing required settings: %v\n\n", missing)
		fs.Usage()
		return exitUsage
	}

	log := logger.New(conf.Log)
	slog.SetDefault(log)
	format := utils.TranslateFormat(opts.output)

	if opts.discover {
		if err := printDiscovery(os.Stdout, conf.Transfer.SourceRoot, format); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitFail
		}
		return exitOK
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	defer writeMetrics(log, m, conf.Metrics)

	svc, err := transfer.NewTransferService(ctx, conf,
		transfer.WithLogger(log),
		transfer.WithMetrics(m),
		transfer.WithNotifier(stageNotifier(os.Stdout)),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFail
	}

	if opts.listEndpoints {
		personal, server, err := svc.ListEndpoints(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitFail
		}
		if err := printEndpoints(os.Stdout, personal, server, format); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitFail
		}
		return exitOK
	}

	report := svc.Run(ctx)
	if err := printReport(os.Stdout, report, format); err != nil {
		log.Warn("report output failed", slog.Any("error", err))
	}

	switch report.Status {
	case transfer.StatusOK:
	case transfer.StatusSourceUnavailable:
		return exitSourceUnavailable
	default:
		return exitFail
	}

	if opts.manifest != "" {
		if err := writeManifest(report, opts.manifest); err != nil {
			log.Error("manifest write failed", slog.String("path", opts.manifest), slog.Any("error", err))
			return exitFail
		}
	}
	if opts.publish || svc.CanPublish() {
		uri, err := svc.PublishManifest(ctx, report)
		if err != nil {
			log.Error("manifest publish failed", slog.Any("error", err))
			return exitFail
		}
		fmt.Fprintln(os.Stdout, "Manifest published to "+uri)
	}
	return exitOK
}

// missingSettings lists what a run cannot do without.
func missingSettings(conf config.Config, opts options) []string {
	var missing []string
	if conf.Core.BaseURL == "" {
		missing = append(missing, utils.TransferBaseURL)
	}
	if opts.discover {
		if conf.Transfer.SourceRoot == "" {
			missing = append(missing, utils.SourceRoot)
		}
		return missing
	}
	if conf.Credentials.Service.Username == "" {
		missing = append(missing, utils.ServiceUsername)
	}
	if opts.listEndpoints {
		return missing
	}
	for _, kv := range [][2]string{
		{utils.SourceEndpoint, conf.Transfer.SourceEndpoint},
		{utils.SourceRoot, conf.Transfer.SourceRoot},
		{utils.DestinationEndpoint, conf.Transfer.DestinationEndpoint},
		{utils.DestinationRoot, conf.Transfer.DestinationRoot},
	} {
		if kv[1] == "" {
			missing = append(missing, kv[0])
		}
	}
	return missing
}

func writeManifest(r *transfer.Report, path string) error {
	m, err := transfer.NewManifest(r)
	if err != nil {
		return err
	}
	return m.WriteFile(path)
}

func writeMetrics(log *slog.Logger, m *metrics.Collector, conf config.MetricsConfig) {
	if conf.Textfile == "" {
		return
	}
	if err := m.WriteTextfile(conf.Textfile); err != nil {
		log.Warn("metrics textfile not written", slog.String("path", conf.Textfile), slog.Any("error", err))
	}
}
