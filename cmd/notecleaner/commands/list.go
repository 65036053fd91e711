package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ryanfardeen/notecleaner/internal/logger"
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "List folders in the notes store",
	RunE:  runFolders,
}

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "List notes in a folder",
	RunE:  runNotes,
}

func init() {
	rootCmd.AddCommand(foldersCmd)
	rootCmd.AddCommand(notesCmd)

	for _, cmd := range []*cobra.Command{foldersCmd, notesCmd} {
		cmd.Flags().String("source", "applescript", "notes source: applescript, vault")
		cmd.Flags().String("vault", "", "vault directory (required with --source vault)")
	}

	notesCmd.Flags().StringP("folder", "f", "", "folder to list (required)")
	_ = notesCmd.MarkFlagRequired("folder")
}

func runFolders(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	source, err := buildSource(cmd)
	if err != nil {
		return err
	}

	folders, err := source.Folders(ctx)
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		fmt.Fprintln(os.Stderr, "no folders found")
		return nil
	}
	for _, name := range folders {
		fmt.Println(name)
	}
	return nil
}

func runNotes(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	source, err := buildSource(cmd)
	if err != nil {
		return err
	}

	folder, _ := cmd.Flags().GetString("folder")
	list, err := source.List(ctx, folder)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintf(os.Stderr, "no notes found in %q\n", folder)
		return nil
	}
	for _, n := range list {
		fmt.Println(n.Title)
	}
	return nil
}
