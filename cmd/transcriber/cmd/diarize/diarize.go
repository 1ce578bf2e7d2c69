package diarize

import (
	"fmt"

	"github.com/spf13/cobra"

	"audio-transcriber/cmd/transcriber/cmd/common"
	"audio-transcriber/internal/app/diarize"
)

var (
	audioDir      string
	transcriptDir string
	method        string
	gapSeconds    float64
)

func init() {
	Cmd.Flags().StringVarP(&audioDir, "input", "i", "", "directory holding the audio files (default from config: audio)")
	Cmd.Flags().StringVarP(&transcriptDir, "output", "o", "", "directory holding the detailed transcripts (default from config: output/transcript)")
	Cmd.Flags().StringVar(&method, "method", "", "speaker detection: pyannote or silence")
	Cmd.Flags().Float64Var(&gapSeconds, "gap", 0, "pause in seconds that switches speaker with --method silence")
}

// Cmd represents the diarize command
var Cmd = &cobra.Command{
	Use:   "diarize",
	Short: "Add speaker labels to detailed transcripts",
	Long: `Add speaker labels to detailed transcripts

- Pairs every <base>_transcript.txt written with --layout detailed with its audio file
- Finds speaker turns with pyannote (needs HUGGINGFACE_TOKEN) or a silence-gap heuristic
- Writes <base>_transcript_with_speakers.txt next to the transcript`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := common.LoadConfig()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("input") {
			cfg.InputDir = audioDir
		}
		if flags.Changed("output") {
			cfg.OutputDir = transcriptDir
		}
		if flags.Changed("method") {
			cfg.Diarize.Method = method
		}
		if flags.Changed("gap") {
			cfg.Diarize.GapSeconds = gapSeconds
		}
		if err := cfg.Resolve(); err != nil {
			return err
		}

		logger, err := common.NewLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		d, err := diarize.New(cfg.Diarize, logger)
		if err != nil {
			return err
		}

		ctx, stop := common.SignalContext(cmd.Context())
		defer stop()

		results, err := diarize.NewRunner(d, logger).Run(ctx, cfg.InputDir, cfg.OutputDir)
		out := cmd.OutOrStdout()
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Fprintf(out, "  failed  %s: %v\n", r.Audio.Name, r.Err)
				continue
			}
			fmt.Fprintf(out, "  ok      %s -> %s (%d segments, %d speakers)\n", r.Audio.Name, r.Output, r.Segments, r.Speakers)
		}
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "no transcripts found to diarize")
			return nil
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d transcripts failed", failed, len(results))
		}
		return nil
	},
}
