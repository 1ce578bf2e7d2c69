package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	outputs map[string][]byte
	err     error
	calls   []call
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	if f.err != nil {
		return nil, f.err
	}
	return f.outputs[name], nil
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    float64
		wantErr bool
	}{
		{"integer", "30\n", 30, false},
		{"decimal", "45.678\n", 45.678, false},
		{"padded", "  12.5  ", 12.5, false},
		{"garbage", "N/A\n", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDuration([]byte(tt.output))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDuration_UsesFFprobe(t *testing.T) {
	runner := &fakeRunner{outputs: map[string][]byte{"ffprobe": []byte("61.25\n")}}
	tool := NewToolWithRunner(runner, nil)

	got, err := tool.Duration(context.Background(), "a.mp3")
	require.NoError(t, err)
	assert.Equal(t, 61.25, got)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "a.mp3", runner.calls[0].args[len(runner.calls[0].args)-1])
}

func TestIs16kHzWav(t *testing.T) {
	tests := []struct {
		name  string
		probe string
		want  bool
	}{
		{
			name:  "pcm_16k",
			probe: `{"streams":[{"codec_type":"audio","codec_name":"pcm_s16le","sample_rate":"16000","channels":1}],"format":{"duration":"3.0"}}`,
			want:  true,
		},
		{
			name:  "mp3_44k",
			probe: `{"streams":[{"codec_type":"audio","codec_name":"mp3","sample_rate":"44100","channels":2}],"format":{"duration":"3.0"}}`,
			want:  false,
		},
		{
			name:  "no_streams",
			probe: `{"streams":[],"format":{"duration":"0"}}`,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{outputs: map[string][]byte{"ffprobe": []byte(tt.probe)}}
			got, err := NewToolWithRunner(runner, nil).Is16kHzWav(context.Background(), "x.wav")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertTo16kHzWav(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{outputs: map[string][]byte{
		"ffprobe": []byte(`{"streams":[{"codec_type":"audio","codec_name":"aac","sample_rate":"48000","channels":2}]}`),
	}}
	tool := NewToolWithRunner(runner, nil)

	got, err := tool.ConvertTo16kHzWav(context.Background(), "/in/talk.m4a", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "talk_16khz.wav"), got)

	require.Len(t, runner.calls, 2)
	ffmpeg := runner.calls[1]
	assert.Equal(t, "ffmpeg", ffmpeg.name)
	assert.Contains(t, ffmpeg.args, "16000")
	assert.Equal(t, got, ffmpeg.args[len(ffmpeg.args)-1])
}

func TestConvertTo16kHzWav_AlreadyConverted(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "talk_16khz.wav")
	require.NoError(t, os.WriteFile(existing, []byte("RIFF"), 0644))

	runner := &fakeRunner{outputs: map[string][]byte{"ffprobe": []byte(`{"streams":[]}`)}}
	got, err := NewToolWithRunner(runner, nil).ConvertTo16kHzWav(context.Background(), "/in/talk.mp3", dir)
	require.NoError(t, err)
	assert.Equal(t, existing, got)
	assert.Len(t, runner.calls, 1)
}

func TestConvertTo16kHzWav_PassThrough(t *testing.T) {
	runner := &fakeRunner{outputs: map[string][]byte{
		"ffprobe": []byte(`{"streams":[{"codec_type":"audio","codec_name":"pcm_s16le","sample_rate":"16000","channels":1}]}`),
	}}
	got, err := NewToolWithRunner(runner, nil).ConvertTo16kHzWav(context.Background(), "/in/ready.wav", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "/in/ready.wav", got)
}

func TestConvertTo16kHzWav_FFmpegFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("ffmpeg error: exit status 1")}
	_, err := NewToolWithRunner(runner, nil).ConvertTo16kHzWav(context.Background(), "/in/broken.mp3", t.TempDir())
	assert.Error(t, err)
}
