// Package cmd provides the command-line interface of testskel.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"testskel/internal/application/common/logging"
	"testskel/internal/application/common/slogger"
	"testskel/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// app carries the configuration shared by the subcommands of one root command.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

// newRootCmd builds the root command with its global flags. Subcommands are added by the caller.
func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "testskel",
		Short: "Generate xUnit test skeletons from C# sources",
		Long: `testskel reads C# source files and writes one xUnit test skeleton per input.

For every class with public methods it emits a test class holding Moq mocks
for the interface-like constructor parameters and one [Fact] stub per public
method, numbered per overload.

Files are read, generated and written by a pipeline with a separate
parallelism limit per stage.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "json", "Log format (json, text)")

	a.bindFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	a.bindFlag("log.format", cmd.PersistentFlags().Lookup("log-format"))

	return cmd
}

func newApp() *app {
	v := viper.New()
	config.SetDefaults(v)
	return &app{v: v}
}

// NewCommand returns a fully wired root command.
func NewCommand() *cobra.Command {
	a := newApp()
	root := newRootCmd(a)
	root.AddCommand(newGenerateCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	if err := NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) bindFlag(key string, flag *pflag.Flag) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", key, err)
	}
}

func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath("./configs")
		a.v.AddConfigPath(".")
	}

	config.BindEnv(a.v)

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config file: %w", err)
		}
		// Config file not found; use defaults and environment
	}

	cfg, err := config.New(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	return slogger.Configure(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: logging.OutputStderr,
	})
}
