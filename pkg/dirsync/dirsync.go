// Package dirsync mirrors directory trees with an external tool.
package dirsync

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/takepatcher/pkg/patcherr"
)

// Syncer makes dst an exact copy of src.
type Syncer interface {
	SyncTree(ctx context.Context, src, dst string) error
}

// Rsync runs `<Binary> <Args...> <src>/ <dst>/`.
type Rsync struct {
	Binary string
	Args   []string
}

var _ Syncer = (*Rsync)(nil)

func DefaultRsync() *Rsync {
	return &Rsync{
		Binary: "rsync",
		Args:   []string{"-a", "--delete"},
	}
}

func (r *Rsync) SyncTree(ctx context.Context, src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return patcherr.IO("unable to create '%s': %w", dst, err)
	}

	args := make([]string, 0, len(r.Args)+2)
	args = append(args, r.Args...)
	args = append(args, withTrailingSlash(src), withTrailingSlash(dst))

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	logger.Infof(ctx, "running: %s %s", r.Binary, strings.Join(args, " "))
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		logger.Tracef(ctx, "%s output:\n%s", r.Binary, out)
	}
	if err != nil {
		return patcherr.IO("unable to sync '%s' to '%s' (output: %q): %w", src, dst, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// the trailing slash makes rsync copy the contents of the directory
// instead of the directory itself.
func withTrailingSlash(path string) string {
	if strings.HasSuffix(path, string(os.PathSeparator)) {
		return path
	}
	return path + string(os.PathSeparator)
}
