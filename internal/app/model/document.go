package model

import "strings"

// Paragraph is a run of sentences rendered as one text block.
type Paragraph struct {
	Sentences []string
}

// Text renders the paragraph on a single line.
func (p Paragraph) Text() string {
	return strings.Join(p.Sentences, " ")
}

// FormattedDocument is the formatter's output for one transcript.
type FormattedDocument struct {
	Source     AudioFile
	Transcript *Transcript
	Paragraphs []Paragraph
}
