package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "audio-transcriber/internal/app/errors"
	"audio-transcriber/internal/app/model"
	"audio-transcriber/internal/config"
)

// Separator frames the header and full-text sections of detailed artifacts.
const Separator = "=================================================="

// FullTextHeading introduces the paragraph section of the detailed layout.
const FullTextHeading = "Full Plain Text Transcript:"

// Writer renders formatted documents and persists them atomically.
type Writer struct {
	layout string
}

// NewWriter returns a writer for layout ("plain" or "detailed"). Unknown
// layouts fall back to plain.
func NewWriter(layout string) *Writer {
	if layout != config.LayoutDetailed {
		layout = config.LayoutPlain
	}
	return &Writer{layout: layout}
}

// Render returns the artifact bytes for doc.
func (w *Writer) Render(doc model.FormattedDocument) []byte {
	if w.layout == config.LayoutDetailed {
		return renderDetailed(doc)
	}
	return renderPlain(doc)
}

// Write renders doc and stores it at dest, creating parent directories.
// The file is replaced atomically so readers never see a partial transcript.
func (w *Writer) Write(doc model.FormattedDocument, dest string) error {
	return WriteFileAtomic(dest, w.Render(doc))
}

func renderPlain(doc model.FormattedDocument) []byte {
	if len(doc.Paragraphs) == 0 {
		return []byte{}
	}
	var b bytes.Buffer
	writeParagraphs(&b, doc.Paragraphs)
	return b.Bytes()
}

func renderDetailed(doc model.FormattedDocument) []byte {
	var b bytes.Buffer
	tr := doc.Transcript
	if tr == nil {
		tr = &model.Transcript{}
	}

	b.WriteString("Transcription\n")
	fmt.Fprintf(&b, "Audio file: %s\n", doc.Source.Name)
	if tr.Model != "" {
		fmt.Fprintf(&b, "Model: %s\n", tr.Model)
	}
	if tr.Language != "" {
		if tr.LanguageProbability > 0 {
			fmt.Fprintf(&b, "Language: %s (%.2f)\n", tr.Language, tr.LanguageProbability)
		} else {
			fmt.Fprintf(&b, "Language: %s\n", tr.Language)
		}
	}
	b.WriteString(Separator + "\n\n")

	for _, s := range tr.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		if s.Timed() {
			fmt.Fprintf(&b, "%s %s\n", FormatTimestamp(s.Start, s.End), text)
		} else {
			b.WriteString(text + "\n")
		}
	}

	b.WriteString("\n\n" + Separator + "\n\n")
	b.WriteString(FullTextHeading + "\n")
	writeParagraphs(&b, doc.Paragraphs)
	return b.Bytes()
}

func writeParagraphs(b *bytes.Buffer, paragraphs []model.Paragraph) {
	for i, p := range paragraphs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p.Text())
		b.WriteString("\n")
	}
}

// FormatTimestamp renders a segment span as "[S.SSs -> E.EEs]".
func FormatTimestamp(start, end float64) string {
	return fmt.Sprintf("[%.2fs -> %.2fs]", start, end)
}

// WriteFileAtomic writes data to a temp file next to dest and renames it.
func WriteFileAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.IO(err, "create directory", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return apperrors.IO(err, "create temp file in", dir)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return apperrors.IO(err, "write", dest)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return apperrors.IO(err, "sync", dest)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return apperrors.IO(err, "close", dest)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return apperrors.IO(err, "chmod", dest)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		cleanup()
		return apperrors.IO(err, "rename", dest)
	}
	return nil
}
