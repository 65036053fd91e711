package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ryanfardeen/notecleaner/internal/cleanup"
	"github.com/ryanfardeen/notecleaner/internal/llm"
	"github.com/ryanfardeen/notecleaner/internal/logger"
	"github.com/ryanfardeen/notecleaner/internal/notes"
	"github.com/ryanfardeen/notecleaner/internal/output"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up notes with an LLM and write them back",
	Long: `Clean sends each selected note through the cleanup pipeline:
normalize the text, ask the model to fix grammar and apply the requested
formatting, validate the reply, and write it back.

Failures are per note: a note that cannot be cleaned is reported and the
run continues. The command exits non-zero if any note failed.

Examples:
  # In-place cleanup of a whole folder
  notecleaner clean --folder Inbox --headings --bullets

  # Only notes whose title contains "meeting", written as new notes
  notecleaner clean --folder Work --title meeting --bullets \
      --dest-folder "Work (cleaned)"

  # Preview without writing
  notecleaner clean --folder Inbox --bullets --dry-run`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	flags := cleanCmd.Flags()

	// Note selection
	flags.String("source", "applescript", "notes source: applescript, vault")
	flags.String("vault", "", "vault directory (required with --source vault)")
	flags.StringP("folder", "f", "", "source folder to process (required)")
	flags.StringP("title", "t", "", "only process notes whose title contains this text")

	// Formatting options
	flags.Bool("headings", false, "organize content under headings")
	flags.Bool("bullets", false, "turn enumerations into bullet points")
	flags.Bool("tables", false, "render tabular data as markdown tables")

	// Write behaviour
	flags.String("dest-folder", "", "write cleaned notes as new notes in this folder instead of updating in place")
	flags.Bool("plain", false, "render the model's markdown into plain text (bullets, underlined headings) before writing")
	flags.Bool("dry-run", false, "run the pipeline without writing anything back")

	// LLM settings
	flags.StringP("provider", "p", "", "LLM provider: anthropic, openai, openrouter, ollama (auto-detects from env vars)")
	flags.StringP("model", "m", "", "model name (provider-specific)")
	flags.StringP("api-key", "k", "", "API key (or use env var)")
	flags.String("base-url", "", "custom API base URL")
	flags.Duration("timeout", 60*time.Second, "per-note request timeout")
	flags.Int("max-tokens", 4096, "max tokens in the model reply")
	flags.Float64("temperature", 0.2, "sampling temperature")

	// Report settings
	flags.StringP("report", "o", "", "write the run report to this file (default: stdout)")
	flags.String("format", "json", "report format: json, jsonl, yaml")

	_ = cleanCmd.MarkFlagRequired("folder")

	_ = viper.BindPFlag("provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("model", flags.Lookup("model"))
	_ = viper.BindPFlag("api_key", flags.Lookup("api-key"))
	_ = viper.BindPFlag("base_url", flags.Lookup("base-url"))
}

func runClean(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	source, err := buildSource(cmd)
	if err != nil {
		logger.Error("failed to create notes source", "error", err)
		return err
	}

	provider, err := buildProvider(cmd)
	if err != nil {
		logger.Error("failed to create provider", "error", err)
		return err
	}

	folder, _ := cmd.Flags().GetString("folder")
	titleFilter, _ := cmd.Flags().GetString("title")
	headings, _ := cmd.Flags().GetBool("headings")
	bullets, _ := cmd.Flags().GetBool("bullets")
	tables, _ := cmd.Flags().GetBool("tables")
	destFolder, _ := cmd.Flags().GetString("dest-folder")
	plain, _ := cmd.Flags().GetBool("plain")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	maxTokens, _ := cmd.Flags().GetInt("max-tokens")
	temperature, _ := cmd.Flags().GetFloat64("temperature")

	runner, err := cleanup.NewRunner(source, provider, cleanup.Config{
		Folder:      folder,
		TitleFilter: titleFilter,
		Options: cleanup.Options{
			Headings: headings,
			Bullets:  bullets,
			Tables:   tables,
		},
		DestFolder:  destFolder,
		RenderPlain: plain,
		DryRun:      dryRun,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Timeout:     timeout,
	})
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}

	logger.Info("starting cleanup",
		"folder", folder,
		"provider", provider.Name(),
		"dry_run", dryRun)

	report, err := runner.Run(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		return err
	}

	if err := writeReport(cmd, report); err != nil {
		logger.Error("failed to write report", "error", err)
		return err
	}

	logger.Info("cleanup complete",
		"cleaned", report.Cleaned,
		"skipped", report.Skipped,
		"failed", report.Failed)

	if report.HasFailures() {
		return fmt.Errorf("%d of %d notes failed", report.Failed, len(report.Results))
	}
	return nil
}

// buildSource creates the notes source selected by --source.
func buildSource(cmd *cobra.Command) (notes.Source, error) {
	sourceName, _ := cmd.Flags().GetString("source")
	switch sourceName {
	case "applescript", "":
		return notes.NewAppleScript(), nil
	case "vault":
		dir, _ := cmd.Flags().GetString("vault")
		if dir == "" {
			return nil, fmt.Errorf("--vault is required with --source vault")
		}
		return notes.NewVault(dir)
	default:
		return nil, fmt.Errorf("unknown source: %s (use 'applescript' or 'vault')", sourceName)
	}
}

// buildProvider creates the LLM provider from flags, config and env.
func buildProvider(cmd *cobra.Command) (llm.Provider, error) {
	name := viper.GetString("provider")
	apiKey := viper.GetString("api_key")
	if name == "" {
		detected, detectedKey := llm.DetectProvider()
		name = detected
		if apiKey == "" {
			apiKey = detectedKey
		}
		logger.Debug("auto-detected provider", "provider", name)
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")

	cfg := llm.DefaultProviderConfig()
	cfg.APIKey = apiKey
	cfg.BaseURL = viper.GetString("base_url")
	cfg.Model = viper.GetString("model")
	cfg.Timeout = timeout

	return llm.NewProvider(name, cfg)
}

// writeReport serializes the run report to the file or stdout.
func writeReport(cmd *cobra.Command, report *cleanup.Report) error {
	out := os.Stdout
	if path, _ := cmd.Flags().GetString("report"); path != "" {
		f, err := os.Create(path) //#nosec G304 -- CLI tool writes to user-specified report file
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	format, _ := cmd.Flags().GetString("format")
	writer, err := output.NewWriter(out, output.Format(format))
	if err != nil {
		return err
	}
	if err := writer.Write(report); err != nil {
		return err
	}
	return writer.Close()
}
