// Package takepatcher wires the marker-based alignment and the in-place
// payload rewrite into the single-file and the batch workflows.
package takepatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/takepatcher/pkg/align"
	"github.com/xaionaro-go/takepatcher/pkg/audio"
	"github.com/xaionaro-go/takepatcher/pkg/config"
	"github.com/xaionaro-go/takepatcher/pkg/dirsync"
	"github.com/xaionaro-go/takepatcher/pkg/match"
	"github.com/xaionaro-go/takepatcher/pkg/patch"
	"github.com/xaionaro-go/takepatcher/pkg/patcherr"
	"github.com/xaionaro-go/takepatcher/pkg/riff"
	"github.com/xaionaro-go/takepatcher/pkg/source"
	"github.com/xaionaro-go/takepatcher/pkg/syncer"
	"github.com/xaionaro-go/takepatcher/pkg/syncer/implementations/gccphat"
	"github.com/xaionaro-go/takepatcher/pkg/wavfile"
)

type Patcher struct {
	Config config.Config

	// WorkDir is the base of the staging directory in batch mode.
	WorkDir string

	DirSyncer dirsync.Syncer
	Aligner   *align.Engine
	Matcher   *match.Matcher
	Writer    *patch.Patcher
}

// New builds a Patcher from the configuration. The staging directory
// (Config.Paths.OutputDir) is resolved against workDir.
func New(cfg config.Config, workDir string) *Patcher {
	aligner := align.NewEngine(cfg.AlignConfig(), cfg.MarkerLocator())
	if cfg.Audit.CrossCheck {
		aligner.CrossCheck = newCrossCheckSyncer
	}
	return &Patcher{
		Config:  cfg,
		WorkDir: workDir,
		DirSyncer: &dirsync.Rsync{
			Binary: cfg.Rsync.Binary,
			Args:   cfg.Rsync.Args,
		},
		Aligner: aligner,
		Matcher: match.NewMatcher(cfg.MatchConfig()),
		Writer:  patch.NewPatcher(),
	}
}

func newCrossCheckSyncer(sampleRate audio.SampleRate) (syncer.Syncer, error) {
	return gccphat.NewSyncer(sampleRate)
}

func (p *Patcher) riffOptions() riff.Options {
	return p.Config.RiffOptions()
}

// Patched describes a reference file whose payload was replaced.
type Patched struct {
	Target  string
	Subject string

	Offset     int
	Diff       *align.DiffStats
	CrossCheck *syncer.ShiftResult
}

// PatchFile replaces the payload of the reference file at referencePath
// with the take provided by src, aligned by the sync marker.
func (p *Patcher) PatchFile(
	ctx context.Context,
	referencePath string,
	src source.Source,
) (_ret *Patched, _err error) {
	logger.Debugf(ctx, "PatchFile(ctx, '%s', '%s')", referencePath, src)
	defer func() { logger.Debugf(ctx, "/PatchFile(ctx, '%s', '%s'): %v", referencePath, src, _err) }()

	reference, err := wavfile.ReadFile(referencePath, p.riffOptions())
	if err != nil {
		return nil, err
	}
	if err := patch.CheckReference(reference.Info); err != nil {
		return nil, fmt.Errorf("'%s': %w", referencePath, err)
	}

	b, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	subject, err := wavfile.Decode(b, p.riffOptions())
	if err != nil {
		return nil, fmt.Errorf("unable to decode the take from '%s': %w", src, err)
	}
	logger.Debugf(ctx, "reference: %d samples at %dHz; subject: %d samples at %dHz",
		len(reference.Samples), reference.SampleRate, len(subject.Samples), subject.SampleRate)

	result, err := p.Aligner.Align(ctx, reference, subject)
	if err != nil {
		return nil, fmt.Errorf("unable to align '%s' to '%s': %w", src, referencePath, err)
	}

	err = p.Writer.Patch(ctx, patch.Request{
		Path:            referencePath,
		Data:            reference.Data,
		ReferenceMarker: result.ReferenceMarker,
		Aligned:         result.Aligned,
		Format:          reference.PCMFormat,
	})
	if err != nil {
		return nil, err
	}

	logger.Infof(ctx, "patched '%s' with '%s' (offset %d, diff %s)", referencePath, src, result.Offset, result.Diff)
	return &Patched{
		Target:     referencePath,
		Subject:    src.String(),
		Offset:     result.Offset,
		Diff:       result.Diff,
		CrossCheck: result.CrossCheck,
	}, nil
}

// StagingDir returns where the project named name is staged.
func (p *Patcher) StagingDir(name string) string {
	dir := p.Config.Paths.OutputDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(p.WorkDir, dir)
	}
	return filepath.Join(dir, name)
}

// PublishDir returns where the patched copy of projectDir is published.
func (p *Patcher) PublishDir(projectDir string) string {
	return filepath.Join(filepath.Dir(projectDir), filepath.Base(projectDir)+p.Config.Paths.PatchedSuffix)
}

// PatchProject stages a copy of the project directory, patches every WAVE
// file in the copy that has a matching take in the pool, and publishes
// the copy next to the project.
//
// Per-target failures do not stop the run: they are collected in the
// Report. The returned error covers staging, scanning, publishing and
// cancellation.
func (p *Patcher) PatchProject(
	ctx context.Context,
	projectDir string,
) (_ret *Report, _err error) {
	logger.Debugf(ctx, "PatchProject(ctx, '%s')", projectDir)
	defer func() { logger.Debugf(ctx, "/PatchProject(ctx, '%s'): %v", projectDir, _err) }()

	projectDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve '%s': %w", projectDir, err)
	}
	stat, err := os.Stat(projectDir)
	if err != nil {
		return nil, patcherr.IO("unable to stat '%s': %w", projectDir, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("'%s' is not a directory", projectDir)
	}
	name := filepath.Base(projectDir)

	report := &Report{
		Project: projectDir,
		Staging: p.StagingDir(name),
	}

	logger.Infof(ctx, "staging '%s' into '%s'", projectDir, report.Staging)
	if err := p.DirSyncer.SyncTree(ctx, projectDir, report.Staging); err != nil {
		return nil, fmt.Errorf("unable to stage the project: %w", err)
	}

	targets, failed, err := scanRecordings(ctx, report.Staging, p.riffOptions())
	if err != nil {
		return nil, fmt.Errorf("unable to scan the project: %w", err)
	}
	for _, f := range failed {
		report.addNotPatched(f.Path, "", "", f.Err)
	}
	logger.Infof(ctx, "found %d recordings in the project (%d unreadable)", len(targets), len(failed))

	pool, poolFailed, err := scanRecordings(ctx, p.Config.Paths.PoolDir, p.riffOptions())
	if err != nil {
		return nil, fmt.Errorf("unable to scan the recordings pool: %w", err)
	}
	for _, f := range poolFailed {
		logger.Warnf(ctx, "skipping the pool file '%s': %v", f.Path, f.Err)
	}
	logger.Infof(ctx, "found %d recordings in the pool '%s'", len(pool), p.Config.Paths.PoolDir)

	for _, m := range p.Matcher.Match(targets, pool) {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if m.Candidate == nil {
			logger.Infof(ctx, "'%s': %s", m.Target.Path, m.Reason)
			report.addNotPatched(m.Target.Path, "", m.Reason, m.Err())
			continue
		}
		logger.Debugf(ctx, "'%s' matched '%s'", m.Target, m.Candidate)

		patched, err := p.PatchFile(ctx, m.Target.Path, source.File{Path: m.Candidate.Path})
		if err != nil {
			logger.Errorf(ctx, "unable to patch '%s': %v", m.Target.Path, err)
			report.addNotPatched(m.Target.Path, m.Candidate.Path, "", err)
			continue
		}
		report.Patched = append(report.Patched, *patched)
	}

	report.Published = p.PublishDir(projectDir)
	logger.Infof(ctx, "publishing '%s' into '%s'", report.Staging, report.Published)
	if err := p.DirSyncer.SyncTree(ctx, report.Staging, report.Published); err != nil {
		return report, fmt.Errorf("unable to publish the patched project: %w", err)
	}

	return report, nil
}
