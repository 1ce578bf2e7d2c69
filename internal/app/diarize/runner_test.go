package diarize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "audio-transcriber/internal/app/errors"
	"audio-transcriber/internal/app/model"
)

type stubDiarizer struct {
	turns []Turn
	err   error
	calls []string
}

func (s *stubDiarizer) Turns(_ context.Context, audioPath string, _ []model.Segment) ([]Turn, error) {
	s.calls = append(s.calls, filepath.Base(audioPath))
	return s.turns, s.err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunner_Run(t *testing.T) {
	root := t.TempDir()
	audioDir := filepath.Join(root, "audio")
	outDir := filepath.Join(root, "out")

	writeFile(t, filepath.Join(audioDir, "talk.mp3"), "")
	writeFile(t, filepath.Join(audioDir, "plain.wav"), "")
	writeFile(t, filepath.Join(audioDir, "untranscribed.flac"), "")
	writeFile(t, filepath.Join(outDir, "talk_transcript.txt"), detailed)
	writeFile(t, filepath.Join(outDir, "plain_transcript.txt"), "Just text.\n")

	stub := &stubDiarizer{turns: []Turn{{Start: 0, End: 2, Speaker: "SPEAKER_00"}, {Start: 3, End: 6, Speaker: "SPEAKER_01"}}}
	results, err := NewRunner(stub, nil).Run(context.Background(), audioDir, outDir)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "plain.wav", results[0].Audio.Name)
	assert.ErrorContains(t, results[0].Err, "no timed segments")

	talk := results[1]
	require.NoError(t, talk.Err)
	assert.Equal(t, 2, talk.Segments)
	assert.Equal(t, 2, talk.Speakers)
	assert.Equal(t, filepath.Join(outDir, "talk_transcript_with_speakers.txt"), talk.Output)
	assert.Equal(t, []string{"talk.mp3"}, stub.calls)

	data, err := os.ReadFile(talk.Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[4.00s -> 5.25s] Speaker 2: How are you?\n")
}

func TestRunner_DiarizerFailureIsPerFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.mp3"), "")
	writeFile(t, filepath.Join(root, "a_transcript.txt"), detailed)

	results, err := NewRunner(&stubDiarizer{err: errors.New("model gated")}, nil).Run(context.Background(), root, root)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.ErrorContains(t, results[0].Err, "model gated")
	assert.NoFileExists(t, filepath.Join(root, "a_transcript_with_speakers.txt"))
}

func TestRunner_MissingAudioDir(t *testing.T) {
	_, err := NewRunner(&stubDiarizer{}, nil).Run(context.Background(), filepath.Join(t.TempDir(), "nope"), "out")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSpeakersPath(t *testing.T) {
	assert.Equal(t, filepath.Join("o", "a_mp3_transcript_with_speakers.txt"), SpeakersPath(filepath.Join("o", "a_mp3_transcript.txt")))
}
