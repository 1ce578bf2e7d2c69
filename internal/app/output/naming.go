package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"audio-transcriber/internal/app/model"
)

// TranscriptSuffix is appended to the input base name.
const TranscriptSuffix = "_transcript.txt"

// PlanOutputs maps every file's path to its artifact path in outputDir.
//
// A file whose base name is unique keeps <base>_transcript.txt. Files sharing
// a base name get <base>_<ext>; when that name is still taken by another
// artifact a counter is appended (<base>_<ext>_2). Names are compared
// case-insensitively so the mapping stays 1:1 on case-insensitive file
// systems too. The result depends only on the set of files and their order.
func PlanOutputs(outputDir string, files []model.AudioFile) map[string]string {
	counts := lo.CountValuesBy(files, func(f model.AudioFile) string {
		return foldName(f.BaseName())
	})
	shared, unique := lo.FilterReject(files, func(f model.AudioFile, _ int) bool {
		return counts[foldName(f.BaseName())] > 1
	})

	names := make(map[string]string, len(files))
	taken := make(map[string]bool, len(files))
	for _, f := range unique {
		names[f.Path] = f.BaseName()
		taken[foldName(f.BaseName())] = true
	}
	for _, f := range shared {
		base := qualifiedName(f)
		name := base
		for n := 2; taken[foldName(name)]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		taken[foldName(name)] = true
		names[f.Path] = name
	}

	return lo.MapValues(names, func(name string, _ string) string {
		return filepath.Join(outputDir, name+TranscriptSuffix)
	})
}

// qualifiedName is <base>_<ext> with the extension as written.
func qualifiedName(file model.AudioFile) string {
	return file.BaseName() + "_" + strings.TrimPrefix(filepath.Ext(file.Name), ".")
}

func foldName(name string) string {
	return strings.ToLower(name)
}
