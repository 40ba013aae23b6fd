package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/voicematch/pkg/cli"
)

var (
	// Global flags
	cfgFile      string
	verbose      bool
	formatOutput string
	outputFile   string

	// Global configuration (loaded at init time)
	globalConfig *cli.Config
)

var rootCmd = &cobra.Command{
	Use:   "voicematch",
	Short: "Speaker verification from the command line",
	Long: `voicematch - compare, embed and identify speakers in audio clips.

Clips are WAV, MP3 or FLAC files, local or s3://bucket/key. Each clip is
resampled to the pipeline rate, cut to a fixed-length segment, turned into
a normalized log-mel (or log-spectrogram) matrix and embedded by an ONNX
speaker model. Two clips match when the cosine similarity of their
embeddings is above the threshold.

Configuration is read from the OS config directory:
  macOS:   ~/Library/Application Support/voicematch/config.yaml
  Linux:   ~/.config/voicematch/config.yaml
  Windows: %AppData%/voicematch/config.yaml

Flags override the configuration file.

Examples:
  # Compare two clips
  voicematch verify --model ecapa.onnx a.wav b.wav

  # Enroll a speaker and identify a new clip
  voicematch enroll alice alice1.wav alice2.flac
  voicematch identify unknown.mp3 --output table`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <user config dir>/voicematch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&formatOutput, "output", "yaml", "output format: yaml, json, table")
	rootCmd.PersistentFlags().StringVar(&outputFile, "output-file", "", "write output to file (default: stdout)")
}

// configLoadErr stores the error from cli.LoadConfig for deferred reporting.
var configLoadErr error

func initConfig() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfg, err := cli.LoadConfig(cfgFile)
	if err != nil {
		// Commands that need config get the error from GetConfig; this
		// keeps 'voicematch version' working.
		configLoadErr = err
		globalConfig = nil
		return
	}
	configLoadErr = nil
	globalConfig = cfg
}

// GetConfig returns the global configuration.
func GetConfig() (*cli.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		cfg, err := cli.LoadConfig(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// printResult writes result in the format selected by --output.
func printResult(result any) error {
	format, err := cli.ParseOutputFormat(formatOutput)
	if err != nil {
		return err
	}
	opts := cli.OutputOptions{
		Format: format,
		File:   outputFile,
	}
	if format == cli.FormatTable && outputFile == "" {
		opts.Styles = cli.NewStyles(cli.DefaultTheme)
	}
	return cli.Output(result, opts)
}
