// Package formatter groups transcript segments into paragraphs.
package formatter

import (
	"strings"
	"unicode"

	"github.com/samber/lo"

	"audio-transcriber/internal/app/model"
)

const (
	DefaultMaxSentences = 5
	DefaultGapSeconds   = 2.0
)

// Options tunes paragraph breaks. MaxSentences <= 0 uses the default;
// GapSeconds <= 0 disables silence-based breaks.
type Options struct {
	MaxSentences int
	GapSeconds   float64
}

// DefaultOptions returns the stock heuristic: five sentences per paragraph,
// and a new paragraph after two seconds of silence.
func DefaultOptions() Options {
	return Options{MaxSentences: DefaultMaxSentences, GapSeconds: DefaultGapSeconds}
}

// Formatter is stateless and safe for concurrent use.
type Formatter struct {
	opts Options
}

func New(opts Options) *Formatter {
	if opts.MaxSentences <= 0 {
		opts.MaxSentences = DefaultMaxSentences
	}
	return &Formatter{opts: opts}
}

// Format builds the paragraphs for tr. An empty or nil transcript gives a
// document with zero paragraphs.
func (f *Formatter) Format(tr *model.Transcript) model.FormattedDocument {
	doc := model.FormattedDocument{Transcript: tr}
	if tr == nil {
		return doc
	}

	units := lo.FilterMap(tr.Segments, func(s model.Segment, _ int) (model.Segment, bool) {
		s.Text = strings.TrimSpace(s.Text)
		return s, s.Text != ""
	})
	if len(units) == 0 {
		return doc
	}
	if lo.NoneBy(units, model.Segment.Timed) {
		units = lo.FlatMap(units, func(s model.Segment, _ int) []model.Segment {
			return lo.Map(SplitSentences(s.Text), func(text string, _ int) model.Segment {
				return model.Segment{Text: text}
			})
		})
	}

	var current model.Paragraph
	for i, u := range units {
		if i > 0 && f.breakBefore(units[i-1], u, len(current.Sentences)) {
			doc.Paragraphs = append(doc.Paragraphs, current)
			current = model.Paragraph{}
		}
		current.Sentences = append(current.Sentences, u.Text)
	}
	if len(current.Sentences) > 0 {
		doc.Paragraphs = append(doc.Paragraphs, current)
	}
	return doc
}

func (f *Formatter) breakBefore(prev, next model.Segment, held int) bool {
	if held >= f.opts.MaxSentences {
		return true
	}
	if f.opts.GapSeconds > 0 && prev.Timed() && next.Timed() {
		return next.Start-prev.End >= f.opts.GapSeconds
	}
	return false
}

// SplitSentences splits text after terminal punctuation. Latin terminators
// end a sentence only when followed by whitespace or the end of text, so
// "3.14" stays whole; CJK terminators always end one.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	var b strings.Builder

	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		b.WriteRune(r)
		if !isTerminal(r) {
			continue
		}
		cjk := isCJKTerminal(r)
		for i+1 < len(runes) && (isTerminal(runes[i+1]) || isCloser(runes[i+1])) {
			i++
			b.WriteRune(runes[i])
			cjk = cjk || isCJKTerminal(runes[i])
		}
		if cjk || i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			flush()
		}
	}
	flush()
	return sentences
}

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}

func isCJKTerminal(r rune) bool {
	return r == '。' || r == '！' || r == '？'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’', '」', '』', '）':
		return true
	}
	return false
}
