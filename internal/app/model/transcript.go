package model

import "strings"

// Segment is one recognized span of speech. Start and End are seconds from the
// beginning of the audio; both are zero when the model reports no timing.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Timed reports whether the segment carries timing information.
func (s Segment) Timed() bool {
	return s.End > 0
}

// Transcript is the raw model output for one AudioFile.
type Transcript struct {
	Segments            []Segment `json:"segments"`
	Language            string    `json:"language,omitempty"`
	LanguageProbability float64   `json:"language_probability,omitempty"`
	// Duration of the audio in seconds, when known.
	Duration float64 `json:"duration,omitempty"`
	Model    string  `json:"model,omitempty"`
}

// Text joins every segment into a single line of text.
func (t *Transcript) Text() string {
	if t == nil {
		return ""
	}
	parts := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		if text := strings.TrimSpace(s.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
