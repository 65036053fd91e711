// Package commands implements the CLI commands for notecleaner.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "notecleaner",
	Short: "Clean up Apple Notes with an AI completion service",
	Long: `Notecleaner reads notes from Apple Notes (or a directory of markdown
files), sends their text to an LLM for grammar cleanup and reformatting,
and writes the result back.

Examples:
  # Clean every note in a folder, adding headings and bullets
  notecleaner clean --folder Inbox --headings --bullets

  # Clean matching notes into a separate folder instead of in place
  notecleaner clean --folder Inbox --title groceries --bullets \
      --dest-folder "Enhanced"

  # Use a markdown vault instead of Apple Notes
  notecleaner clean --source vault --vault ~/notes --folder daily --bullets

  # Use a specific provider and model
  notecleaner clean --folder Inbox --bullets -p openai -m gpt-4o`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.notecleaner.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".notecleaner")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("NOTECLEANER")
	viper.AutomaticEnv()

	// Also check common API key env vars
	_ = viper.BindEnv("api_key", "ANTHROPIC_API_KEY", "OPENAI_API_KEY", "OPENROUTER_API_KEY")

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
