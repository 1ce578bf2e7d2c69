package export

import (
	"fmt"

	"github.com/spf13/cobra"

	"audio-transcriber/cmd/transcriber/cmd/common"
	"audio-transcriber/internal/app"
	"audio-transcriber/internal/app/converter/export"
	"audio-transcriber/internal/app/model"
)

var (
	outputFilePath string
	runID          string
	lastRun        bool
)

func init() {
	Cmd.Flags().StringVarP(&outputFilePath, "outputFilePath", "o", "", "set outputFilePath")
	Cmd.Flags().StringVar(&runID, "run", "", "export only the records of this run ID")
	Cmd.Flags().BoolVar(&lastRun, "last", false, "export only the most recent run")

	Cmd.MarkFlagRequired("outputFilePath")
	Cmd.MarkFlagsMutuallyExclusive("run", "last")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export the transcription history to excel",
	Long: `Export the transcription history to excel

- Exports every recorded file by default
- --run or --last limit the export to a single batch`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := common.LoadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Resolve(); err != nil {
			return err
		}
		if cfg.History.Driver == "none" {
			return fmt.Errorf("history is disabled (history.driver: none)")
		}

		dao, cleanup, err := app.InitializeTranscriptionDAO(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		id := runID
		if lastRun {
			if id, err = dao.LastRunID(ctx); err != nil {
				return err
			}
		}

		var records []model.TranscriptionRecord
		if id != "" {
			records, err = dao.GetByRun(ctx, id)
		} else {
			records, err = dao.GetAll(ctx)
		}
		if err != nil {
			return err
		}

		if err := export.ToExcel(records, outputFilePath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "export finished, %d records written to %v\n", len(records), outputFilePath)
		return nil
	},
}
