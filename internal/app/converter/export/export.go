package export

import (
	"fmt"
	"time"

	"github.com/tealeg/xlsx"

	"audio-transcriber/internal/app/model"
)

var headers = []string{
	"ID", "Run", "File", "Format", "Audio Duration", "Provider", "Model",
	"Language", "Output", "Status", "Error Message", "Created At", "SHA256",
}

// ToExcel writes history records to an xlsx workbook at outputFilePath.
func ToExcel(records []model.TranscriptionRecord, outputFilePath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transcriptions")
	if err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().Value = h
	}

	for _, r := range records {
		status := "ok"
		if r.HasError {
			status = "error"
		}

		row := sheet.AddRow()
		row.AddCell().Value = fmt.Sprint(r.ID)
		row.AddCell().Value = r.RunID
		row.AddCell().Value = r.FileName
		row.AddCell().Value = r.Format
		row.AddCell().Value = fmt.Sprintf("%.2f", r.AudioDuration)
		row.AddCell().Value = r.Provider
		row.AddCell().Value = r.ModelName
		row.AddCell().Value = r.Language
		row.AddCell().Value = r.OutputPath
		row.AddCell().Value = status
		row.AddCell().Value = r.ErrorMessage
		row.AddCell().Value = r.CreatedAt.Format(time.RFC3339)
		row.AddCell().Value = r.FileHash
	}

	if err := file.Save(outputFilePath); err != nil {
		return fmt.Errorf("failed to save %s: %w", outputFilePath, err)
	}
	return nil
}
