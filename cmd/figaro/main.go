package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-go-golems/figaro/pkg/engine"
	"github.com/go-go-golems/figaro/pkg/events"
	"github.com/go-go-golems/figaro/pkg/persist"
	"github.com/go-go-golems/figaro/pkg/session"
)

var rootCmd = &cobra.Command{
	Use:   "figaro",
	Short: "Chat with Mistral models, with session history and response branching",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("state", "", "Path to the chat state file (default ~/.figaro/state.json)")
	rootCmd.PersistentFlags().String("base-url", engine.DefaultBaseURL, "Mistral API base URL")
	rootCmd.PersistentFlags().Float64("temperature", 0, "Sampling temperature (0 leaves the provider default)")
	rootCmd.PersistentFlags().Float64("top-p", 0, "Nucleus sampling parameter (0 leaves the provider default)")
	rootCmd.PersistentFlags().Int("max-response-tokens", 0, "Response token cap (0 leaves the provider default)")

	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("state", rootCmd.PersistentFlags().Lookup("state"))
	_ = viper.BindPFlag("base-url", rootCmd.PersistentFlags().Lookup("base-url"))
	_ = viper.BindPFlag("temperature", rootCmd.PersistentFlags().Lookup("temperature"))
	_ = viper.BindPFlag("top-p", rootCmd.PersistentFlags().Lookup("top-p"))
	_ = viper.BindPFlag("max-response-tokens", rootCmd.PersistentFlags().Lookup("max-response-tokens"))

	viper.SetEnvPrefix("FIGARO")
	viper.AutomaticEnv()
	_ = viper.BindEnv("mistral-api-key", "FIGARO_MISTRAL_API_KEY")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newChatCommand())
}

func initLogging() error {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
	return nil
}

func engineSettings() *engine.Settings {
	settings := engine.NewSettings()
	settings.APIKey = viper.GetString("mistral-api-key")
	if baseURL := viper.GetString("base-url"); baseURL != "" {
		settings.BaseURL = baseURL
	}
	if v := viper.GetFloat64("temperature"); v > 0 {
		settings.Temperature = &v
	}
	if v := viper.GetFloat64("top-p"); v > 0 {
		settings.TopP = &v
	}
	if v := viper.GetInt("max-response-tokens"); v > 0 {
		settings.MaxResponseTokens = &v
	}
	return settings
}

func statePath() string {
	if path := viper.GetString("state"); path != "" {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".figaro", "state.json")
}

func buildStore() *session.Store {
	store := session.NewStore(persist.NewFileStore(statePath()))
	store.Load()
	return store
}

func buildPublisher() *events.Publisher {
	return events.NewPublisher()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
