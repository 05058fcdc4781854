// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/xlsx2pdf/internal/history"
	"github.com/pdiddy/xlsx2pdf/pkg/types"
)

// flagKeys maps persistent flags to their viper keys.
var flagKeys = map[string]string{
	"timeout":      "timeout",
	"backend":      "backend",
	"sheets":       "sheets",
	"soffice-path": "soffice_path",
	"history":      "history.enabled",
	"log-level":    "log_level",
}

func bindFlags(fs *pflag.FlagSet) {
	for flag, key := range flagKeys {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding --%s: %v", flag, err))
		}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("timeout", types.DefaultTimeout)
	v.SetDefault("backend", string(types.BackendAuto))
	v.SetDefault("sheets", string(types.SheetsAll))
	v.SetDefault("soffice_path", "")
	v.SetDefault("verify_pdf", true)
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.path", defaultHistoryPath())
	v.SetDefault("log_level", "info")
}

func defaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "xlsx2pdf", "history.db")
}

// configFrom reads and validates the configuration held by v.
func configFrom(v *viper.Viper) (types.Config, error) {
	cfg := types.Config{
		Conversion: types.ConversionConfig{
			Backend:     types.BackendName(strings.ToLower(v.GetString("backend"))),
			Timeout:     v.GetDuration("timeout"),
			Sheets:      types.SheetScope(strings.ToLower(v.GetString("sheets"))),
			SofficePath: v.GetString("soffice_path"),
			VerifyPDF:   v.GetBool("verify_pdf"),
		},
		History: types.HistoryConfig{
			Enabled: v.GetBool("history.enabled"),
			Path:    v.GetString("history.path"),
		},
		LogLevel: strings.ToLower(v.GetString("log_level")),
	}
	if err := validateConfig(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateConfig(cfg types.Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s: invalid value %v (%s)", fe.Namespace(), fe.Value(), fe.Tag())
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// setup loads the configuration for cmd and builds the logger.
func setup(cmd *cobra.Command) (types.Config, *slog.Logger, error) {
	cfg, err := configFrom(viper.GetViper())
	if err != nil {
		return types.Config{}, nil, err
	}
	if noVerify, _ := cmd.Flags().GetBool("no-verify"); noVerify {
		cfg.Conversion.VerifyPDF = false
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, newLogger(cfg.LogLevel), nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// recordHistory stores results when history is enabled. Failures are
// logged and never change the command's outcome.
func recordHistory(ctx context.Context, cfg types.Config, logger *slog.Logger, results ...types.ConversionResult) {
	if !cfg.History.Enabled || len(results) == 0 {
		return
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.Warn("history unavailable", slog.String("path", cfg.History.Path), slog.String("error", err.Error()))
		return
	}
	defer store.Close()

	ctx = context.WithoutCancel(ctx)
	for _, r := range results {
		if err := store.Record(ctx, r); err != nil {
			logger.Warn("could not record conversion", slog.String("id", r.ID), slog.String("error", err.Error()))
		}
	}
}
