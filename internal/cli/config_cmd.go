package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dyike/FinAgentGo/config"
	"github.com/dyike/FinAgentGo/internal/agent"
)

// newConfigCmd creates the config command
func newConfigCmd(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	var asJSON bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			redacted := opts.cfg.Redacted()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), redacted)
			}
			showConfig(cmd, redacted)
			return nil
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	configCmd.AddCommand(show, &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and model credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cmd, opts.cfg)
		},
	})
	return configCmd
}

func showConfig(cmd *cobra.Command, cfg config.Config) {
	out := cmd.OutOrStdout()
	DisplayKeyValues(out, "Paths", [][2]string{
		{"project_dir", cfg.ProjectDir},
		{"static_dir", cfg.StaticDir},
		{"db_path", cfg.DBPath},
		{"listen_addr", cfg.ListenAddr},
	})
	DisplayKeyValues(out, "Market data", [][2]string{
		{"market_movers_url", cfg.MarketMoversURL},
		{"movers_max_rows", strconv.Itoa(cfg.MoversMaxRows)},
		{"quote_provider", cfg.QuoteProvider},
		{"fetch_timeout", cfg.FetchTimeout().String()},
		{"cache", fmt.Sprintf("%t (%s, ttl %s)", cfg.CacheEnabled, cfg.CacheBackend, cfg.CacheTTL())},
	})
	DisplayKeyValues(out, "Agent", [][2]string{
		{"llm_provider", cfg.LLMProvider},
		{"llm_model", cfg.LLMModel},
		{"backend_url", cfg.BackendURL},
		{"deepseek_api_key", cfg.DeepSeekAPIKey},
		{"openai_api_key", cfg.OpenAIAPIKey},
		{"eino_debug", fmt.Sprintf("%t (port %d)", cfg.EinoDebugEnabled, cfg.EinoDebugPort)},
	})
}

// validateConfig checks field values, then tries to construct the chat model
// so missing credentials show up before serve is started.
func validateConfig(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	if err := cfg.Validate(); err != nil {
		DisplayError(out, err)
		return err
	}
	DisplaySuccess(out, "configuration fields are valid")

	if _, err := agent.NewChatModel(cmd.Context(), cfg); err != nil {
		DisplayError(out, err)
		return fmt.Errorf("chat model: %w", err)
	}
	DisplaySuccess(out, "chat model "+cfg.LLMProvider+" can be constructed")
	return nil
}
