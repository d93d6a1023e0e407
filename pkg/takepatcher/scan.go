package takepatcher

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/takepatcher/pkg/match"
	"github.com/xaionaro-go/takepatcher/pkg/patcherr"
	"github.com/xaionaro-go/takepatcher/pkg/riff"
	"github.com/xaionaro-go/takepatcher/pkg/wavfile"
)

const wavExt = ".wav"

type scanFailure struct {
	Path string
	Err  error
}

func isWAV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), wavExt)
}

// scanRecordings walks root recursively and probes every WAVE file.
// Files that cannot be probed are returned separately.
func scanRecordings(
	ctx context.Context,
	root string,
	opts riff.Options,
) ([]match.Recording, []scanFailure, error) {
	var (
		recordings []match.Recording
		failures   []scanFailure
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !isWAV(path) {
			return nil
		}

		stat, err := d.Info()
		if err != nil {
			failures = append(failures, scanFailure{Path: path, Err: patcherr.IO("unable to stat '%s': %w", path, err)})
			return nil
		}
		info, err := wavfile.ProbeFile(path, opts)
		if err != nil {
			failures = append(failures, scanFailure{Path: path, Err: err})
			return nil
		}

		logger.Tracef(ctx, "'%s': %s, %s, mtime %s", path, info.Encoding(), info.Duration(), stat.ModTime())
		recordings = append(recordings, match.Recording{
			Path:     path,
			ModTime:  stat.ModTime(),
			Duration: info.Duration(),
		})
		return nil
	})
	if err != nil {
		return nil, nil, patcherr.IO("unable to walk '%s': %w", root, err)
	}
	return recordings, failures, nil
}
