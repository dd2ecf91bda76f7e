package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sales-reconciliation-tool/pkg/errors"
	"sales-reconciliation-tool/pkg/logger"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "salesrecon",
	Short: "Sales order export reconciliation tool",
	Long: `Salesrecon investigates discrepancies between sales order exports and
the records imported from them. Each subcommand loads one or more CSV or XLSX
exports, filters and aggregates their rows and prints its findings.

Examples:
  salesrecon dates --file "2025 YTD.csv" --prefix 12- --year 2025
  salesrecon skipped --file review.csv --bad-period "January 0000" --period "December 2025"
  salesrecon compare --reference ben_12_2025.csv --candidate "2025 YTD.csv" --sales-person BenW
  salesrecon order 9715 --source ytd="2025 YTD.csv" --source review=review.csv --output-format json`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	Version:           getVersionString(),
	PersistentPreRunE: bindFlags,
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	return NewCLIErrorHandler().HandleError(err)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text, json")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in config file and ENV variables.
func initConfig() {
	viper.SetEnvPrefix("SALESRECON")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			configErr := errors.ConfigurationError(errors.CodeMissingConfig, "config", cfgFile, err).
				WithSuggestion("check the path and syntax of the --config file")
			os.Exit(NewCLIErrorHandler().HandleError(configErr))
		}
	}

	if err := setupLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(4)
	}

	if cfgFile != "" {
		logger.WithComponent("cli").WithField("config_file", viper.ConfigFileUsed()).Debug("Using config file")
	}
}

// setupLogger replaces the global logger according to --verbose and --log-format
func setupLogger() error {
	config := logger.DefaultConfig()
	if viper.GetBool("verbose") {
		config = logger.DebugConfig()
	}
	config.Format = logger.Format(strings.ToLower(viper.GetString("log-format")))
	if config.Format == "" {
		config.Format = logger.TextFormat
	}

	log, err := logger.NewLogger(config)
	if err != nil {
		return err
	}
	logger.SetGlobalLogger(log)
	return nil
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
