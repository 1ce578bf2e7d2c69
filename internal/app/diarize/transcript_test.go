package diarize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"audio-transcriber/internal/app/model"
)

const detailed = `Transcription
Audio file: talk.mp3
Model: medium.en
Language: en (0.99)
==================================================

[0.00s -> 1.50s] Hello there.
[bad line
[2.00s -> oops] ignored
[4.00s -> 5.25s] How are you?


==================================================

Full Plain Text Transcript:
Hello there. How are you?
`

func TestParseDetailed(t *testing.T) {
	got := ParseDetailed(detailed)
	assert.Equal(t, []model.Segment{
		{Start: 0, End: 1.5, Text: "Hello there."},
		{Start: 4, End: 5.25, Text: "How are you?"},
	}, got)
}

func TestParseDetailed_PlainLayoutHasNoSegments(t *testing.T) {
	assert.Empty(t, ParseDetailed("Hello there.\n\nHow are you?\n"))
}

func TestRender(t *testing.T) {
	labeled := []LabeledSegment{
		{Segment: model.Segment{Start: 0, End: 1.5, Text: "Hello there."}, Speaker: "Speaker 1"},
		{Segment: model.Segment{Start: 4, End: 5.25, Text: "How are you?"}, Speaker: "Speaker 2"},
	}

	want := "Transcription with Speaker Diarization\n" +
		"Audio file: talk.mp3\n" +
		"Original transcript: talk_transcript.txt\n" +
		"==================================================\n\n" +
		"[0.00s -> 1.50s] Speaker 1: Hello there.\n" +
		"[4.00s -> 5.25s] Speaker 2: How are you?\n" +
		"\n\n==================================================\n\n" +
		"Full Plain Text Transcript:\n" +
		"Hello there. How are you?\n"

	assert.Equal(t, want, string(Render("talk.mp3", "talk_transcript.txt", labeled)))
}
