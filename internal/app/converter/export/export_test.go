package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"audio-transcriber/internal/app/model"
)

func TestToExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.xlsx")
	records := []model.TranscriptionRecord{
		{ID: 1, RunID: "run-1", FileName: "a.mp3", Format: "mp3", AudioDuration: 61.234, Provider: "faster_whisper",
			ModelName: "medium.en", Language: "en", OutputPath: "output/transcript/a_transcript.txt",
			CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		{ID: 2, RunID: "run-1", FileName: "c.wav", Format: "wav", Provider: "faster_whisper", HasError: true, ErrorMessage: "decode failed"},
	}

	require.NoError(t, ToExcel(records, path))

	wb, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet := wb.Sheet["Transcriptions"]
	require.NotNil(t, sheet)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "File", sheet.Rows[0].Cells[2].Value)
	assert.Equal(t, "a.mp3", sheet.Rows[1].Cells[2].Value)
	assert.Equal(t, "61.23", sheet.Rows[1].Cells[4].Value)
	assert.Equal(t, "2026-03-01T12:00:00Z", sheet.Rows[1].Cells[11].Value)
	assert.Equal(t, "error", sheet.Rows[2].Cells[9].Value)
	assert.Equal(t, "decode failed", sheet.Rows[2].Cells[10].Value)
}

func TestToExcel_BadPath(t *testing.T) {
	err := ToExcel(nil, filepath.Join(t.TempDir(), "missing", "history.xlsx"))
	assert.ErrorContains(t, err, "failed to save")
}
