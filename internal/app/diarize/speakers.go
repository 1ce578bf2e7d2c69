// Package diarize labels the segments of detailed transcripts with speakers.
package diarize

import (
	"fmt"
	"strconv"
	"strings"

	"audio-transcriber/internal/app/model"
)

// UnknownSpeaker labels segments that overlap no speaker turn.
const UnknownSpeaker = "Unknown"

// Turn is one interval attributed to a speaker ID such as SPEAKER_00.
type Turn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// LabeledSegment is a transcript segment with its speaker label.
type LabeledSegment struct {
	model.Segment
	Speaker string
}

// AssignSpeaker returns the speaker whose turns overlap seg the longest.
// Ties keep the earliest turn.
func AssignSpeaker(seg model.Segment, turns []Turn) string {
	best := 0.0
	speaker := UnknownSpeaker
	for _, t := range turns {
		overlap := min(seg.End, t.End) - max(seg.Start, t.Start)
		if overlap > best {
			best = overlap
			speaker = t.Speaker
		}
	}
	return speaker
}

// SpeakerLabel renders SPEAKER_00 as "Speaker 1". Other IDs are returned unchanged.
func SpeakerLabel(id string) string {
	n, ok := strings.CutPrefix(id, "SPEAKER_")
	if !ok {
		return id
	}
	i, err := strconv.Atoi(n)
	if err != nil {
		return id
	}
	return fmt.Sprintf("Speaker %d", i+1)
}

// Label assigns a display label to every segment.
func Label(segments []model.Segment, turns []Turn) []LabeledSegment {
	labeled := make([]LabeledSegment, len(segments))
	for i, s := range segments {
		labeled[i] = LabeledSegment{Segment: s, Speaker: SpeakerLabel(AssignSpeaker(s, turns))}
	}
	return labeled
}
