// Package report renders the outcome of a batch run as a table.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/xaionaro-go/takepatcher/pkg/align"
	"github.com/xaionaro-go/takepatcher/pkg/takepatcher"
)

const (
	StatusPatched    = "patched"
	StatusNotPatched = "not patched"
	NoteWarning      = "WARNING"
)

type Options struct {
	// WarnMean and WarnMax are the diff thresholds above which a patched
	// file gets a warning note.
	WarnMean float64
	WarnMax  float64

	// Pretty selects the rounded box style.
	Pretty bool
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Warning returns a non-empty note if the diff exceeds the thresholds.
func Warning(diff *align.DiffStats, opts Options) string {
	if diff == nil {
		return ""
	}
	var exceeded []string
	if diff.Mean > opts.WarnMean {
		exceeded = append(exceeded, fmt.Sprintf("mean > %g", opts.WarnMean))
	}
	if diff.Max > opts.WarnMax {
		exceeded = append(exceeded, fmt.Sprintf("max > %g", opts.WarnMax))
	}
	if len(exceeded) == 0 {
		return ""
	}
	return NoteWarning + ": " + strings.Join(exceeded, ", ")
}

func formatDiff(v float64, diff *align.DiffStats) string {
	if diff == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.6f", v)
}

func relPath(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// Table renders the report.
func Table(r *takepatcher.Report, opts Options) string {
	tw := table.NewWriter()
	if opts.Pretty {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}
	tw.AppendHeader(table.Row{"Status", "Target", "Subject", "Offset", "Diff mean", "Diff max", "Note"})

	for _, p := range r.Patched {
		var diffMean, diffMax float64
		if p.Diff != nil {
			diffMean, diffMax = p.Diff.Mean, p.Diff.Max
		}
		tw.AppendRow(table.Row{
			StatusPatched,
			relPath(r.Staging, p.Target),
			p.Subject,
			p.Offset,
			formatDiff(diffMean, p.Diff),
			formatDiff(diffMax, p.Diff),
			Warning(p.Diff, opts),
		})
	}
	for _, np := range r.NotPatched {
		tw.AppendRow(table.Row{
			StatusNotPatched,
			relPath(r.Staging, np.Target),
			np.Subject,
			"",
			"",
			"",
			np.Reason,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// Write prints the table followed by the totals.
func Write(w io.Writer, r *takepatcher.Report, opts Options) error {
	var b strings.Builder
	b.WriteString(Table(r, opts))
	b.WriteString("\n")
	fmt.Fprintf(&b, "patched: %d, not patched: %d\n", len(r.Patched), len(r.NotPatched))
	if r.Published != "" {
		fmt.Fprintf(&b, "published: %s\n", r.Published)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
