package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vanderheijden86/flexlist/internal/datasource"
	"github.com/vanderheijden86/flexlist/pkg/config"
	"github.com/vanderheijden86/flexlist/pkg/debug"
	"github.com/vanderheijden86/flexlist/pkg/metrics"
)

const envPrefix = "FLEXLIST"

// app is the state shared by every subcommand, filled in before RunE.
type app struct {
	configPath string
	cfg        config.Config
	log        *logrus.Logger
	closers    []func()
}

func newRootCommand() *cobra.Command {
	a := &app{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:          "flexlist",
		Short:        "Browse and edit hierarchical item lists.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, v)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "config file (default "+config.ConfigPath()+")")
	f.String("log-level", "", "log level: debug, info, warn or error")
	f.String("log-file", "", "write logs to this file")
	f.String("metrics-addr", "", "serve timing metrics on this address, e.g. :9090")
	f.String("format", "", "source format: jsonl or sqlite (default from the extension)")
	f.String("state-dir", "", "directory for saved list state")
	f.Duration("undo-timeout", 0, "how long removed items can be restored")

	cmd.AddCommand(
		newBrowseCommand(a),
		newListCommand(a),
		newDeleteCommand(a),
		newVersionCommand(),
	)
	return cmd
}

// setup loads the config file, overlays env and flags, then builds the
// logger and the metrics endpoint.
func (a *app) setup(cmd *cobra.Command, v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	path := a.configPath
	if path == "" {
		path = config.ConfigPath()
	}
	cfg := config.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadFrom(path); err != nil {
			return err
		}
	}
	overlay(&cfg, v)
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log, err := a.newLogger(cmd.Name() == "browse")
	if err != nil {
		return err
	}
	a.log = log

	if addr := cfg.Metrics.Addr; addr != "" {
		if err := a.serveMetrics(addr); err != nil {
			return err
		}
	}
	return nil
}

func overlay(cfg *config.Config, v *viper.Viper) {
	if v.IsSet("log-level") {
		cfg.Log.Level = v.GetString("log-level")
	}
	if v.IsSet("log-file") {
		cfg.Log.File = config.ExpandHome(v.GetString("log-file"))
	}
	if v.IsSet("metrics-addr") {
		cfg.Metrics.Addr = v.GetString("metrics-addr")
	}
	if v.IsSet("format") {
		cfg.Data.Format = v.GetString("format")
	}
	if v.IsSet("state-dir") {
		cfg.State.Dir = config.ExpandHome(v.GetString("state-dir"))
	}
	if v.IsSet("undo-timeout") {
		cfg.UndoTimeout = v.GetDuration("undo-timeout")
	}
}

// newLogger writes to the configured file, or to stderr. The browser
// owns the terminal, so without a file it logs nowhere.
func (a *app) newLogger(tui bool) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level := logrus.InfoLevel
	if s := a.cfg.Log.Level; s != "" {
		var err error
		if level, err = logrus.ParseLevel(s); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	log.SetLevel(level)

	switch {
	case a.cfg.Log.File != "":
		f, err := os.OpenFile(a.cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		log.SetOutput(f)
		debug.SetOutput(f)
		a.closers = append(a.closers, func() { f.Close() })
	case tui:
		log.SetOutput(io.Discard)
	default:
		log.SetOutput(os.Stderr)
	}
	return log, nil
}

func (a *app) serveMetrics(addr string) error {
	h, err := metrics.Handler()
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.WithError(err).WithField("addr", addr).Error("metrics server stopped")
		}
	}()
	a.log.WithField("addr", addr).Info("serving metrics")
	a.closers = append(a.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// open resolves the source path from args or config and opens it.
func (a *app) open(args []string) (datasource.Source, error) {
	if len(args) > 0 {
		a.cfg.Data.Path = args[0]
	}
	if a.cfg.Data.Path == "" {
		return nil, errors.New("no source given: pass a path or set data.path in the config")
	}
	return datasource.Open(a.cfg.Data.Path, a.cfg.DataFormat(), a.log)
}
