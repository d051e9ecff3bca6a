package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codespeak-dev/codespeak/internal/config"
	"github.com/codespeak-dev/codespeak/internal/models"
	"github.com/codespeak-dev/codespeak/internal/transcriber"
	"github.com/codespeak-dev/codespeak/internal/tui"
)

func modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage local whisper.cpp models",
	}
	cmd.AddCommand(modelsListCmd(), modelsDownloadCmd(), modelsRemoveCmd())
	return cmd
}

func modelsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List downloadable models and which are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := models.DefaultStore()
			if err != nil {
				return err
			}
			fmt.Println(tui.StyleHeader.Render("whisper.cpp models"), tui.StyleMuted.Render(store.Dir))
			for _, e := range store.List() {
				mark := tui.StyleMuted.Render("·")
				if e.Installed {
					mark = tui.StyleSuccess.Render("✓")
				}
				langs := "english"
				if e.Multilingual {
					langs = "multilingual"
				}
				fmt.Printf("  %s %-16s %-8s %s\n", mark, e.ID, e.SizeLabel(), tui.StyleMuted.Render(langs))
			}
			return nil
		},
	}
}

func modelsDownloadCmd() *cobra.Command {
	var use bool
	cmd := &cobra.Command{
		Use:   "download <model>",
		Short: "Download a model into the models directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := models.DefaultStore()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			path, err := store.Download(ctx, args[0], printProgress)
			fmt.Println()
			if err != nil {
				return err
			}
			fmt.Println(tui.StyleSuccess.Render("Installed " + path))
			if use {
				return useModel(path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&use, "use", false, "switch the config to whisper-cpp with this model")
	return cmd
}

func modelsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <model>",
		Short: "Delete a downloaded model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := models.DefaultStore()
			if err != nil {
				return err
			}
			if err := store.Remove(args[0]); err != nil {
				return err
			}
			fmt.Println("Removed", args[0])
			return nil
		},
	}
}

func printProgress(done, total int64) {
	if total <= 0 {
		return
	}
	fmt.Printf("\r  %5.1f%%  %d / %d MB", float64(done)*100/float64(total), done/1_000_000, total/1_000_000)
}

// useModel points the config file at a downloaded model.
func useModel(path string) error {
	cfgPath, err := configPath()
	if err != nil {
		return err
	}
	cfg, _, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Transcription.Provider = transcriber.ProviderWhisperCpp
	cfg.Transcription.ModelPath = path
	cfg.Transcription.Model = ""
	if err := cfg.Save(cfgPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Println("Config updated:", cfgPath)
	return nil
}
