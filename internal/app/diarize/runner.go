package diarize

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"audio-transcriber/internal/app/model"
	"audio-transcriber/internal/app/output"
	"audio-transcriber/internal/app/util/files"
)

// SpeakersSuffix replaces output.TranscriptSuffix in diarized artifacts.
const SpeakersSuffix = "_transcript_with_speakers.txt"

// Result is the outcome for one transcript.
type Result struct {
	Audio      model.AudioFile
	Transcript string
	Output     string
	Segments   int
	Speakers   int
	Err        error
}

// Runner pairs transcripts with their audio and writes speaker-labelled copies.
type Runner struct {
	diarizer Diarizer
	logger   *zap.Logger
}

func NewRunner(d Diarizer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{diarizer: d, logger: logger}
}

// Run diarizes every audio file in audioDir that has a transcript in
// transcriptDir. Files without a transcript are skipped. A failure on one file
// is recorded in its Result and does not stop the others.
func (r *Runner) Run(ctx context.Context, audioDir, transcriptDir string) ([]Result, error) {
	audioFiles, err := files.CollectAudioFiles(audioDir, r.logger)
	if err != nil {
		return nil, err
	}

	plan := output.PlanOutputs(transcriptDir, audioFiles)
	var results []Result
	for _, af := range audioFiles {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		transcript := plan[af.Path]
		if !files.Exists(transcript) {
			r.logger.Debug("no transcript for audio file", zap.String("file", af.Name))
			continue
		}
		res := r.diarizeOne(ctx, af, transcript)
		if res.Err != nil {
			r.logger.Error("diarization failed", zap.String("file", af.Name), zap.Error(res.Err))
		} else {
			r.logger.Info("speakers assigned",
				zap.String("file", af.Name),
				zap.Int("segments", res.Segments),
				zap.Int("speakers", res.Speakers),
				zap.String("output", res.Output))
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) diarizeOne(ctx context.Context, af model.AudioFile, transcript string) Result {
	res := Result{
		Audio:      af,
		Transcript: transcript,
		Output:     SpeakersPath(transcript),
	}

	content, err := files.ReadOutputFile(transcript)
	if err != nil {
		res.Err = err
		return res
	}
	segments := ParseDetailed(content)
	if len(segments) == 0 {
		res.Err = fmt.Errorf("%s has no timed segments; transcribe with --layout detailed first", filepath.Base(transcript))
		return res
	}
	res.Segments = len(segments)

	turns, err := r.diarizer.Turns(ctx, af.Path, segments)
	if err != nil {
		res.Err = err
		return res
	}

	labeled := Label(segments, turns)
	speakers := map[string]struct{}{}
	for _, s := range labeled {
		if s.Speaker != UnknownSpeaker {
			speakers[s.Speaker] = struct{}{}
		}
	}
	res.Speakers = len(speakers)

	res.Err = output.WriteFileAtomic(res.Output, Render(af.Name, filepath.Base(transcript), labeled))
	return res
}

// SpeakersPath maps <base>_transcript.txt to <base>_transcript_with_speakers.txt.
func SpeakersPath(transcript string) string {
	return strings.TrimSuffix(transcript, output.TranscriptSuffix) + SpeakersSuffix
}
