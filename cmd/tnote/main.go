package main

import (
	"fmt"
	"os"

	"github.com/franz/track-notes/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "tnote",
		Short: "Track Notes - time-anchored notes on audio tracks",
		Long: `tnote (Track Notes) keeps layered, time-anchored annotations on an audio
track. The track is split into fixed-length timeline lines with a waveform
envelope, a playhead and annotation markers.

Projects live in a SQLite database and can be exported to and imported from
JSON snapshots.`,
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: applyLogFlags,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/tnote.yaml)")
	rootCmd.PersistentFlags().String("db", "tnote.db", "project database file")
	rootCmd.PersistentFlags().StringP("project", "p", "", "project to work on")
	rootCmd.PersistentFlags().String("events-dir", "artifacts", "directory for JSONL event logs")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")

	// Bind flags to viper
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("project", rootCmd.PersistentFlags().Lookup("project"))
	viper.BindPFlag("events_dir", rootCmd.PersistentFlags().Lookup("events-dir"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))

	viper.SetDefault("segment_length", util.DefaultSegmentLength)
	viper.SetDefault("waveform_budget", util.DefaultWaveformBudget)
	viper.SetDefault("decode_sample_rate", util.DefaultDecodeSampleRate)
	viper.SetDefault("ffmpeg", "ffmpeg")
	viper.SetDefault("ffprobe", "ffprobe")
	viper.SetDefault("width", 0)
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in common locations
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/tnote")
		viper.SetConfigName("tnote")
		viper.SetConfigType("yaml")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("TNOTE")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		util.DebugLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

func applyLogFlags(cmd *cobra.Command, args []string) error {
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))
	util.SetColors(util.IsTerminal(os.Stderr.Fd()))

	if viper.GetFloat64("segment_length") < 0 {
		return fmt.Errorf("%w: segment_length must be positive", util.ErrInvalidConfig)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
