package diarize

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"audio-transcriber/internal/app/model"
	"audio-transcriber/internal/app/output"
)

// ParseDetailed extracts the "[S.SSs -> E.EEs] text" lines of a detailed
// transcript. Malformed lines are ignored.
func ParseDetailed(content string) []model.Segment {
	var segments []model.Segment
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if seg, ok := parseLine(scanner.Text()); ok {
			segments = append(segments, seg)
		}
	}
	return segments
}

func parseLine(line string) (model.Segment, bool) {
	if !strings.HasPrefix(line, "[") {
		return model.Segment{}, false
	}
	stamp, text, ok := strings.Cut(line[1:], "]")
	if !ok {
		return model.Segment{}, false
	}
	startStr, endStr, ok := strings.Cut(stamp, " -> ")
	if !ok {
		return model.Segment{}, false
	}
	start, err := parseSeconds(startStr)
	if err != nil {
		return model.Segment{}, false
	}
	end, err := parseSeconds(endStr)
	if err != nil {
		return model.Segment{}, false
	}
	return model.Segment{Start: start, End: end, Text: strings.TrimSpace(text)}, true
}

func parseSeconds(s string) (float64, error) {
	s, ok := strings.CutSuffix(strings.TrimSpace(s), "s")
	if !ok {
		return 0, fmt.Errorf("missing unit in %q", s)
	}
	return strconv.ParseFloat(s, 64)
}

// Render produces the speaker-labelled artifact.
func Render(audioName, transcriptName string, labeled []LabeledSegment) []byte {
	var b bytes.Buffer
	b.WriteString("Transcription with Speaker Diarization\n")
	fmt.Fprintf(&b, "Audio file: %s\n", audioName)
	fmt.Fprintf(&b, "Original transcript: %s\n", transcriptName)
	b.WriteString(output.Separator + "\n\n")

	texts := make([]string, 0, len(labeled))
	for _, s := range labeled {
		fmt.Fprintf(&b, "%s %s: %s\n", output.FormatTimestamp(s.Start, s.End), s.Speaker, s.Text)
		texts = append(texts, s.Text)
	}

	b.WriteString("\n\n" + output.Separator + "\n\n")
	b.WriteString(output.FullTextHeading + "\n")
	b.WriteString(strings.TrimSpace(strings.Join(texts, " ")))
	b.WriteString("\n")
	return b.Bytes()
}
