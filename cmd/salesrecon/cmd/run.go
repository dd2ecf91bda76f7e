package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sales-reconciliation-tool/cmd/salesrecon/config"
	"sales-reconciliation-tool/internal/investigation"
	"sales-reconciliation-tool/internal/reporter"
	"sales-reconciliation-tool/pkg/errors"
	"sales-reconciliation-tool/pkg/logger"
)

// addLoadFlags adds the flags controlling how input files are read
func addLoadFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String(config.KeyProfile, "review", "column layout profile: review, fishbowl")
	flags.String(config.KeyCurrencyPolicy, "fail", "malformed price handling: fail, skip")
	flags.Int(config.KeyMaxSkipped, 0, "stop after this many skipped prices (0 = no limit)")
	flags.String(config.KeyEncoding, "utf-8", "text encoding: utf-8, windows-1252")
	flags.String(config.KeyDelimiter, ",", "field delimiter: a character, tab, semicolon or pipe")
	flags.String(config.KeySheet, "", "worksheet of an XLSX file (default: first sheet)")
	flags.Int(config.KeySampleSize, investigation.DefaultSampleSize, "rows shown in sample tables")
}

// addOutputFlags adds the flags controlling the report
func addOutputFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP(config.KeyOutputFormat, "f", "console", "output format: console, json, yaml, csv")
	flags.StringP(config.KeyOutputFile, "o", "", "output file path (default: stdout)")
	flags.Bool(config.KeyNoColor, false, "disable colors in console output")
}

// bindFlags binds the flags of the running command so that config file and
// environment values apply to them
func bindFlags(cmd *cobra.Command, args []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "flags", cmd.Name(), err)
	}
	return nil
}

// requireSettings fails with a validation error naming the first missing setting
func requireSettings(keys ...string) error {
	for _, key := range keys {
		if strings.TrimSpace(viper.GetString(key)) == "" {
			return errors.ValidationError(errors.CodeMissingField, key, "", nil).
				WithSuggestion("pass --" + key + " or set it in the config file")
		}
	}
	return nil
}

func investigationOptions() (investigation.Options, error) {
	return config.CreateOptions(viper.GetViper())
}

// runInvestigation runs inv and writes its findings. Findings of a failed
// run are written too, marked as aborted, and the run error is returned.
func runInvestigation(cmd *cobra.Command, inv investigation.Investigation) error {
	reportConfig, err := config.CreateReportConfig(viper.GetViper())
	if err != nil {
		return err
	}
	output, err := reporter.NewOutput(reportConfig, logger.GetGlobalLogger())
	if err != nil {
		return err
	}

	log := logger.WithComponent("cli").WithField("command", cmd.Name())
	log.Debug("Running investigation")

	findings, runErr := investigation.Run(cmd.Context(), inv)
	if err := output.Write(findings, viper.GetString(config.KeyOutputFile), cmd.OutOrStdout()); err != nil {
		if runErr != nil {
			log.WithError(err).Error("Failed to write partial findings")
			return runErr
		}
		return err
	}
	return runErr
}
