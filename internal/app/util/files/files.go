package files

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	apperrors "audio-transcriber/internal/app/errors"
	"audio-transcriber/internal/app/model"
)

// CheckInputDir fails with ErrNotFound unless dir is an existing directory.
func CheckInputDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.NotFound("input directory", dir)
		}
		return apperrors.IO(err, "stat", dir)
	}
	if !info.IsDir() {
		return apperrors.NotFound("input directory", dir)
	}
	return nil
}

// CollectAudioFiles lists the supported audio files directly inside dir, sorted
// by name. Subdirectories, hidden files and unsupported extensions are skipped.
func CollectAudioFiles(dir string, logger *zap.Logger) ([]model.AudioFile, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := CheckInputDir(dir); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.IO(err, "read", dir)
	}

	candidates := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		return !e.IsDir() && !strings.HasPrefix(e.Name(), ".")
	})

	audioFiles := lo.FilterMap(candidates, func(e os.DirEntry, _ int) (model.AudioFile, bool) {
		format, ok := model.FormatFromPath(e.Name())
		if !ok {
			logger.Debug("skipping unsupported file",
				zap.String("file", e.Name()),
				zap.Error(apperrors.ErrUnsupportedFormat))
			return model.AudioFile{}, false
		}
		return model.AudioFile{
			Path:   filepath.Join(dir, e.Name()),
			Name:   e.Name(),
			Format: format,
		}, true
	})

	sort.Slice(audioFiles, func(i, j int) bool {
		return audioFiles[i].Name < audioFiles[j].Name
	})

	return audioFiles, nil
}

// ReadOutputFile reads the specified output file and returns its text content.
func ReadOutputFile(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", apperrors.IO(err, "read", filePath)
	}

	return strings.TrimSpace(string(content)), nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
