package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/takepatcher/pkg/align"
	"github.com/xaionaro-go/takepatcher/pkg/takepatcher"
)

var defaultOpts = Options{WarnMean: 0.01, WarnMax: 0.1}

func TestWarning(t *testing.T) {
	for _, tc := range []struct {
		name string
		diff *align.DiffStats
		want string
	}{
		{"no diff", nil, ""},
		{"clean", &align.DiffStats{Mean: 0.001, Max: 0.05}, ""},
		{"at the threshold", &align.DiffStats{Mean: 0.01, Max: 0.1}, ""},
		{"mean", &align.DiffStats{Mean: 0.02, Max: 0.05}, "WARNING: mean > 0.01"},
		{"max", &align.DiffStats{Mean: 0.001, Max: 0.5}, "WARNING: max > 0.1"},
		{"both", &align.DiffStats{Mean: 0.2, Max: 0.5}, "WARNING: mean > 0.01, max > 0.1"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Warning(tc.diff, defaultOpts))
		})
	}
}

func TestWrite(t *testing.T) {
	r := &takepatcher.Report{
		Staging:   "/work/_out/session",
		Published: "/music/session_patched",
		Patched: []takepatcher.Patched{
			{Target: "/work/_out/session/a.wav", Subject: "/pool/take-1.wav", Offset: -30, Diff: &align.DiffStats{Mean: 0.0005, Max: 0.002}},
			{Target: "/work/_out/session/b.wav", Subject: "/pool/take-2.wav", Offset: 12, Diff: &align.DiffStats{Mean: 0.3, Max: 0.9}},
			{Target: "/work/_out/session/c.wav", Subject: "/pool/take-3.wav"},
		},
		NotPatched: []takepatcher.NotPatched{
			{Target: "/work/_out/session/sub/d.wav", Reason: "no match", Err: errors.New("no match")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, r, defaultOpts))
	out := buf.String()

	assert.Contains(t, out, "a.wav")
	assert.Contains(t, out, "sub/d.wav")
	assert.NotContains(t, out, "/work/_out")
	assert.Contains(t, out, "0.000500")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "no match")
	assert.Equal(t, 1, strings.Count(out, NoteWarning))
	assert.Contains(t, out, "patched: 3, not patched: 1")
	assert.Contains(t, out, "published: /music/session_patched")

	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "b.wav") {
			assert.Contains(t, line, NoteWarning)
		}
	}
}

func TestTableStyle(t *testing.T) {
	r := &takepatcher.Report{NotPatched: []takepatcher.NotPatched{{Target: "a.wav", Reason: "no match"}}}
	assert.Contains(t, Table(r, Options{Pretty: true}), "╭")
	assert.NotContains(t, Table(r, Options{}), "╭")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
