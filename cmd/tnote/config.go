package main

import (
	"fmt"

	"github.com/franz/track-notes/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// GetConfigString retrieves a string config value with proper precedence:
// 1. Command-line flag (if set)
// 2. Environment variable (TNOTE_*)
// 3. Config file
// 4. Default value
func GetConfigString(key string, defaultValue string) string {
	val := viper.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// GetConfigInt retrieves an int config value with proper precedence
func GetConfigInt(key string, defaultValue int) int {
	val := viper.GetInt(key)
	if val == 0 {
		return defaultValue
	}
	return val
}

// EffectiveConfig is the resolved configuration printed by "tnote config"
type EffectiveConfig struct {
	ConfigFile       string  `yaml:"config_file,omitempty"`
	DB               string  `yaml:"db"`
	Project          string  `yaml:"project,omitempty"`
	EventsDir        string  `yaml:"events_dir"`
	SegmentLength    float64 `yaml:"segment_length"`
	WaveformBudget   int     `yaml:"waveform_budget"`
	DecodeSampleRate int     `yaml:"decode_sample_rate"`
	FFmpeg           string  `yaml:"ffmpeg"`
	FFprobe          string  `yaml:"ffprobe"`
	Width            int     `yaml:"width,omitempty"`
	Verbose          bool    `yaml:"verbose"`
	Quiet            bool    `yaml:"quiet"`
}

func effectiveConfig() EffectiveConfig {
	return EffectiveConfig{
		ConfigFile:       viper.ConfigFileUsed(),
		DB:               GetConfigString("db", "tnote.db"),
		Project:          viper.GetString("project"),
		EventsDir:        GetConfigString("events_dir", "artifacts"),
		SegmentLength:    util.SegmentLength(),
		WaveformBudget:   util.WaveformBudget(),
		DecodeSampleRate: util.DecodeSampleRate(),
		FFmpeg:           util.BinaryPath("ffmpeg"),
		FFprobe:          util.BinaryPath("ffprobe"),
		Width:            viper.GetInt("width"),
		Verbose:          viper.GetBool("verbose"),
		Quiet:            viper.GetBool("quiet"),
	}
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration tnote resolves from flags, TNOTE_* environment
variables, the config file and defaults, as YAML.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := yaml.Marshal(effectiveConfig())
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
