package model

import (
	"path/filepath"
	"strings"
)

// AudioFormat is the container/encoding tag of an input file.
type AudioFormat string

const (
	FormatMP3  AudioFormat = "mp3"
	FormatWAV  AudioFormat = "wav"
	FormatM4A  AudioFormat = "m4a"
	FormatFLAC AudioFormat = "flac"
)

// SupportedFormats is the allow-list of formats the collector accepts.
var SupportedFormats = []AudioFormat{FormatMP3, FormatWAV, FormatM4A, FormatFLAC}

// FormatFromPath returns the format for path's extension, or "" and false
// when the extension is not supported.
func FormatFromPath(path string) (AudioFormat, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range SupportedFormats {
		if string(f) == ext {
			return f, true
		}
	}
	return "", false
}

// MIMEType returns the media type used when uploading the file to remote models.
func (f AudioFormat) MIMEType() string {
	switch f {
	case FormatMP3:
		return "audio/mpeg"
	case FormatWAV:
		return "audio/wav"
	case FormatM4A:
		return "audio/mp4"
	case FormatFLAC:
		return "audio/flac"
	default:
		return "application/octet-stream"
	}
}

// AudioFile is one collected input. It is never mutated after collection.
type AudioFile struct {
	Path   string
	Name   string
	Format AudioFormat
}

// BaseName is the file name without its extension.
func (a AudioFile) BaseName() string {
	return strings.TrimSuffix(a.Name, filepath.Ext(a.Name))
}
