package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/chatlegis/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	verbose    bool
	configFile string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"

	// cfg is resolved once per invocation by the root PersistentPreRunE
	cfg *internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chatlegis",
	Short: "Chat with the ChatLegis legal research assistant",
	Long: `A terminal client for the ChatLegis legal research assistant.

Ask questions about statutes, judgements, contracts and suits, attach
documents or audio recordings, and pick up stored conversations where you
left them. The transcript of every session is kept locally between runs.

Features:
  • Interactive chat with document and audio attachments
  • Retrieval scoped to a document category
  • Browse and reload stored conversations
  • Export transcripts (JSONL, Markdown, YAML, JSON)

Quick Start:
  chatlegis login --token <jwt>           # Store your access token
  chatlegis chat                          # Start an interactive chat
  chatlegis send "What is Article 184?"   # Send a single question
  chatlegis conversations                 # List stored conversations`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// persistentPreRunE resolves the configuration before every command.
// It is attached in init to avoid an initialization cycle with bindFlags.
func persistentPreRunE(cmd *cobra.Command, args []string) error {
	if err := internal.LoadDotEnv(""); err != nil {
		return err
	}

	v := internal.NewViper()
	if err := bindFlags(v); err != nil {
		return err
	}

	loaded, err := internal.LoadConfig(v, configFile)
	if err != nil {
		return err
	}

	if verbose {
		internal.SetVerbose(true)
	} else {
		internal.SetLogLevel(internal.ParseLogLevel(loaded.LogLevel))
	}

	cfg = loaded
	internal.LogDebug("Configuration resolved",
		"base_url", cfg.BaseURL,
		"session", cfg.Session,
		"data_dir", cfg.DataDir,
		"timeout", cfg.Timeout)
	return nil
}

// bindFlags lets flags take precedence over environment and config file
func bindFlags(v *viper.Viper) error {
	bindings := map[string]string{
		internal.KeyBaseURL:  "base-url",
		internal.KeyToken:    "token",
		internal.KeyDataDir:  "data-dir",
		internal.KeySession:  "session",
		internal.KeyLogLevel: "log-level",
		internal.KeyTimeout:  "timeout",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = persistentPreRunE

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default $HOME/.chatlegis/config.yaml)")
	rootCmd.PersistentFlags().StringP("session", "s", internal.DefaultSessionName, "Local session name")
	rootCmd.PersistentFlags().String("base-url", internal.DefaultBaseURL, "ChatLegis backend URL")
	rootCmd.PersistentFlags().String("token", "", "Bearer token (overrides the stored login)")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory holding the session database and caches")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Duration("timeout", internal.DefaultTimeout, "Per-request timeout")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
