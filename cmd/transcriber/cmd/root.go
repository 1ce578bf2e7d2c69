package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"audio-transcriber/cmd/transcriber/cmd/common"
	"audio-transcriber/cmd/transcriber/cmd/diarize"
	"audio-transcriber/cmd/transcriber/cmd/export"
	"audio-transcriber/cmd/transcriber/cmd/providers"
	"audio-transcriber/cmd/transcriber/cmd/version"
	"audio-transcriber/internal/app"
	"audio-transcriber/internal/app/converter"
	"audio-transcriber/internal/app/util/files"
	"audio-transcriber/internal/config"
)

var (
	inputDir     string
	outputDir    string
	providerName string
	modelName    string
	language     string
	layout       string
	workers      int
	skipExisting bool
	progress     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "transcriber",
	Short: "Batch transcribe a folder of audio files into formatted text",
	Long: `Batch transcribe a folder of audio files into formatted text.
- Reads every mp3, wav, m4a and flac file in the input folder (default ./audio)
- Transcribes each file with the configured speech model
- Groups the text into paragraphs and writes <name>_transcript.txt to ./output/transcript`,
	Args:             cobra.NoArgs,
	TraverseChildren: true,
	SilenceUsage:     true,
	RunE:             runBatch,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(diarize.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(providers.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().StringVarP(&common.ConfigPath, "config", "c", "", "config file (default is ./"+config.DefaultConfigFile+" when present)")
	rootCmd.PersistentFlags().BoolVarP(&common.Verbose, "verbose", "V", false, "verbose output")

	rootCmd.Flags().StringVarP(&inputDir, "input", "i", "", "directory holding the audio files (default audio)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory receiving the transcripts (default output/transcript)")
	rootCmd.Flags().StringVarP(&providerName, "provider", "p", "", "transcription provider, see 'transcriber providers'")
	rootCmd.Flags().StringVarP(&modelName, "model", "m", "", "model size or variant, e.g. medium.en or large-v3")
	rootCmd.Flags().StringVarP(&language, "language", "l", "", "language hint, empty to auto-detect")
	rootCmd.Flags().StringVar(&layout, "layout", "", "output layout: plain or detailed")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0, "number of files transcribed concurrently")
	rootCmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "skip files whose transcript already exists")
	rootCmd.Flags().BoolVar(&progress, "progress", false, "show the progress bar even when stderr is not a terminal")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := common.LoadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Resolve(); err != nil {
		return err
	}

	logger, err := common.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := common.SignalContext(cmd.Context())
	defer stop()

	conv, cleanup, err := openConverter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("starting batch",
		zap.String("input", cfg.InputDir),
		zap.String("output", cfg.OutputDir),
		zap.String("provider", cfg.Engine.Provider),
		zap.String("model", cfg.Engine.Model))

	report, err := conv.Run(ctx, converter.Options{
		InputDir:        cfg.InputDir,
		OutputDir:       cfg.OutputDir,
		SkipExisting:    cfg.SkipExisting,
		Workers:         cfg.Workers,
		Progress:        converter.ShouldShowProgress(progress),
		MetricsTextfile: cfg.Metrics.Textfile,
	})
	if report != nil {
		report.WriteSummary(cmd.OutOrStdout())
	}
	if err != nil {
		return err
	}
	if report.HasFailures() {
		return fmt.Errorf("%d of %d files failed", len(report.Failed()), len(report.Results))
	}
	return nil
}

// openConverter builds the pipeline once the input directory is known to
// exist, so a bad path never starts a model or creates the history store.
func openConverter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*converter.Converter, func(), error) {
	if err := files.CheckInputDir(cfg.InputDir); err != nil {
		return nil, nil, err
	}
	return app.InitializeConverter(ctx, cfg, logger)
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.InputDir = inputDir
	}
	if flags.Changed("output") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("provider") {
		cfg.Engine.Provider = providerName
		if !flags.Changed("model") {
			cfg.Engine.Model = ""
		}
	}
	if flags.Changed("model") {
		cfg.Engine.Model = modelName
	}
	if flags.Changed("language") {
		cfg.Engine.Language = language
	}
	if flags.Changed("layout") {
		cfg.Layout = layout
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("skip-existing") {
		cfg.SkipExisting = skipExisting
	}
}
