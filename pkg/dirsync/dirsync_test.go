package dirsync

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/takepatcher/pkg/patcherr"
)

func writeTree(t *testing.T, root string) {
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Media"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "project.rpp"), []byte("<REAPER_PROJECT>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Media", "track.wav"), []byte("RIFF"), 0o644))
}

func assertTree(t *testing.T, root string) {
	b, err := os.ReadFile(filepath.Join(root, "project.rpp"))
	require.NoError(t, err)
	assert.Equal(t, "<REAPER_PROJECT>", string(b))
	b, err = os.ReadFile(filepath.Join(root, "Media", "track.wav"))
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(b))
}

func TestRsyncWithShellCopy(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no sh available")
	}
	src := t.TempDir()
	writeTree(t, src)
	dst := filepath.Join(t.TempDir(), "out", "project")

	s := &Rsync{
		Binary: "sh",
		Args:   []string{"-c", `cp -R "$1". "$2"`, "sh"},
	}
	require.NoError(t, s.SyncTree(context.Background(), src, dst))
	assertTree(t, dst)
}

func TestRsync(t *testing.T) {
	if _, err := exec.LookPath("rsync"); err != nil {
		t.Skip("no rsync available")
	}
	src := t.TempDir()
	writeTree(t, src)
	dst := filepath.Join(t.TempDir(), "mirror")
	require.NoError(t, os.MkdirAll(dst, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dst, "stale.txt"), nil, 0o644))

	require.NoError(t, DefaultRsync().SyncTree(context.Background(), src, dst))
	assertTree(t, dst)
	_, err := os.Stat(filepath.Join(dst, "stale.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestRsyncFailure(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("no false available")
	}
	s := &Rsync{Binary: "false"}
	err := s.SyncTree(context.Background(), t.TempDir(), t.TempDir())
	assert.True(t, patcherr.IsIO(err), "%v", err)
}

func TestWithTrailingSlash(t *testing.T) {
	assert.Equal(t, "a/b/", withTrailingSlash("a/b"))
	assert.Equal(t, "a/b/", withTrailingSlash("a/b/"))
}
