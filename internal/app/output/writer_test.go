package output

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "audio-transcriber/internal/app/errors"
	"audio-transcriber/internal/app/model"
	"audio-transcriber/internal/config"
)

func sampleDoc() model.FormattedDocument {
	return model.FormattedDocument{
		Source: model.AudioFile{Path: "audio/talk.mp3", Name: "talk.mp3", Format: model.FormatMP3},
		Transcript: &model.Transcript{
			Model:               "medium.en",
			Language:            "en",
			LanguageProbability: 0.987,
			Segments: []model.Segment{
				{Start: 0, End: 1.5, Text: " Hello."},
				{Start: 4, End: 5.25, Text: "Bye."},
			},
		},
		Paragraphs: []model.Paragraph{
			{Sentences: []string{"Hello."}},
			{Sentences: []string{"Bye."}},
		},
	}
}

func TestRender_Plain(t *testing.T) {
	got := NewWriter(config.LayoutPlain).Render(sampleDoc())
	assert.Equal(t, "Hello.\n\nBye.\n", string(got))
}

func TestRender_PlainEmpty(t *testing.T) {
	got := NewWriter(config.LayoutPlain).Render(model.FormattedDocument{})
	assert.Empty(t, got)
}

func TestRender_Detailed(t *testing.T) {
	want := "Transcription\n" +
		"Audio file: talk.mp3\n" +
		"Model: medium.en\n" +
		"Language: en (0.99)\n" +
		"==================================================\n\n" +
		"[0.00s -> 1.50s] Hello.\n" +
		"[4.00s -> 5.25s] Bye.\n" +
		"\n\n==================================================\n\n" +
		"Full Plain Text Transcript:\n" +
		"Hello.\n\nBye.\n"

	got := NewWriter(config.LayoutDetailed).Render(sampleDoc())
	assert.Equal(t, want, string(got))
}

func TestRender_DetailedUntimed(t *testing.T) {
	doc := model.FormattedDocument{
		Source:     model.AudioFile{Name: "memo.m4a"},
		Transcript: &model.Transcript{Segments: []model.Segment{{Text: "No timing here."}}},
		Paragraphs: []model.Paragraph{{Sentences: []string{"No timing here."}}},
	}
	got := string(NewWriter(config.LayoutDetailed).Render(doc))
	assert.Contains(t, got, "\nNo timing here.\n")
	assert.NotContains(t, got, "Language:")
	assert.NotContains(t, got, "->")
}

func TestNewWriter_UnknownLayoutIsPlain(t *testing.T) {
	assert.Equal(t, config.LayoutPlain, NewWriter("html").layout)
}

func TestWrite_CreatesDirectoriesAndIsIdempotent(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "output", "transcript", "talk_transcript.txt")
	w := NewWriter(config.LayoutPlain)

	require.NoError(t, w.Write(sampleDoc(), dest))
	first, err := os.ReadFile(dest)
	require.NoError(t, err)

	require.NoError(t, w.Write(sampleDoc(), dest))
	second, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWrite_EmptyDocumentProducesEmptyFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "silence_transcript.txt")
	require.NoError(t, NewWriter(config.LayoutPlain).Write(model.FormattedDocument{}, dest))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestWrite_FailureIsIOError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := NewWriter(config.LayoutPlain).Write(sampleDoc(), filepath.Join(blocker, "out.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrIO))
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "[12.35s -> 15.00s]", FormatTimestamp(12.345, 15))
}
