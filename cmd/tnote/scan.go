package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/franz/track-notes/internal/meta"
	"github.com/franz/track-notes/internal/scan"
	"github.com/franz/track-notes/internal/store"
	"github.com/franz/track-notes/internal/util"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Create a project for every new audio file in a directory tree",
	Long: `Walk a directory tree and create one project per audio file that no
project references yet. Names come from the files' tags or file names;
clashing names get a numeric suffix. Durations are read with ffprobe.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().IntP("concurrency", "j", 4, "files inspected in parallel")
	scanCmd.Flags().StringSlice("ext", nil, "additional file extensions to treat as audio")
}

func runScan(cmd *cobra.Command, args []string) error {
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	exts, _ := cmd.Flags().GetStringSlice("ext")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := store.Open(GetConfigString("db", "tnote.db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	logger := openEventLogger()
	defer logger.Close()

	var probe scan.Prober
	if ffprobe := util.BinaryPath("ffprobe"); meta.CheckFFprobeAvailable(ffprobe) {
		probe = meta.NewProber(ffprobe).Duration
	} else {
		util.WarnLog("ffprobe not found; durations will be read when projects are opened")
	}

	scanner := scan.New(&scan.Config{
		Store:          db,
		AdditionalExts: exts,
		Concurrency:    concurrency,
		Probe:          probe,
		Logger:         logger,
	})

	result, err := scanner.Scan(ctx, args[0])
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	if len(result.Errors) > 0 {
		util.WarnLog("%d files could not be added", len(result.Errors))
	}
	return nil
}
