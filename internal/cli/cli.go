// Package cli provides the command-line interface for FinAgentGo
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dyike/FinAgentGo/config"
	"github.com/dyike/FinAgentGo/pkg/logger"
)

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"

type rootOptions struct {
	configPath string
	debug      bool
	logLevel   string

	cfg *config.Config
}

// Run starts the CLI application
func Run() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "finagent",
		Short: "FinAgentGo - morning financial brief agent",
		Long: `FinAgentGo gathers pre-market data (market movers, world indices,
commodities, sector tone and treasury yields) and relays a conversational
agent to browser clients over WebSocket.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			if _, err := logger.Init(logger.OptionsFromConfig(cfg)); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newChatCmd(opts),
		newMoversCmd(opts),
		newIndicesCmd(opts),
		newCommoditiesCmd(opts),
		newStocksCmd(opts),
		newSectorsCmd(opts),
		newYieldsCmd(opts),
		newHistoryCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// load reads the config file when one is given and applies the environment
// and flag overrides. Without --config the built-in defaults rooted at the
// working directory are used.
func (o *rootOptions) load() (*config.Config, error) {
	var cfg config.Config
	if o.configPath != "" {
		mgr, err := config.NewManager(config.WithConfigPath(o.configPath))
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = mgr.Get().WithEnvOverrides()
	} else {
		cfg = *config.DefaultConfig()
	}
	o.applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o.cfg = &cfg
	return o.cfg, nil
}

func (o *rootOptions) applyFlags(cfg *config.Config) {
	if o.debug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "FinAgentGo %s\n", Version)
		},
	}
}
