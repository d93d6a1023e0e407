package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/takepatcher/pkg/config"
	"github.com/xaionaro-go/takepatcher/pkg/report"
	"github.com/xaionaro-go/takepatcher/pkg/source"
	"github.com/xaionaro-go/takepatcher/pkg/takepatcher"
)

const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

type flags struct {
	LogLevel           logger.Level
	ConfigPath         string
	PoolDir            string
	BufferURL          string
	OutputDir          string
	MarkerGain         float64
	CrossCheck         bool
	NetPprofListenAddr string
}

func main() {
	f := flags{LogLevel: logger.LevelInfo}
	pflag.Var(&f.LogLevel, "log-level", "Log level")
	pflag.StringVar(&f.ConfigPath, "config", "", "path to a YAML config file")
	pflag.StringVar(&f.PoolDir, "pool-dir", "", "the directory with the captured takes (batch mode)")
	pflag.StringVar(&f.BufferURL, "buffer-url", "", "the URL of the capture buffer (single-file mode)")
	pflag.StringVar(&f.OutputDir, "output-dir", "", "the staging directory (batch mode)")
	pflag.Float64Var(&f.MarkerGain, "marker-gain", 0, "the factor to boost the sync marker by in the patched file")
	pflag.BoolVar(&f.CrossCheck, "cross-check", false, "audit every alignment with GCC-PHAT")
	pflag.StringVar(&f.NetPprofListenAddr, "net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <project-dir | reference.wav>\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(exitUsage)
	}

	os.Exit(run(f, pflag.Arg(0)))
}

func run(f flags, target string) int {
	l := logrus.Default().WithLevel(f.LogLevel)
	ctx := logger.CtxWithLogger(context.Background(), l.WithField("run_id", uuid.New().String()))
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(f)
	if err != nil {
		logger.Errorf(ctx, "%v", err)
		return exitUsage
	}
	logger.Tracef(ctx, "config: %s", spew.Sdump(cfg))

	if f.NetPprofListenAddr != "" {
		observability.Go(ctx, func(ctx context.Context) {
			logger.Error(ctx, http.ListenAndServe(f.NetPprofListenAddr, nil))
		})
	}

	lock := flock.New(cfg.Paths.LockFile)
	locked, err := lock.TryLock()
	if err != nil {
		logger.Errorf(ctx, "unable to take the lock '%s': %v", cfg.Paths.LockFile, err)
		return exitFatal
	}
	if !locked {
		logger.Errorf(ctx, "another instance is running (lock '%s' is held)", cfg.Paths.LockFile)
		return exitFatal
	}
	defer lock.Unlock()

	stat, err := os.Stat(target)
	if err != nil {
		logger.Errorf(ctx, "unable to stat '%s': %v", target, err)
		return exitUsage
	}

	workDir, err := os.Getwd()
	if err != nil {
		logger.Errorf(ctx, "unable to get the working directory: %v", err)
		return exitFatal
	}
	patcher := takepatcher.New(*cfg, workDir)
	reportOpts := report.Options{
		WarnMean: cfg.Audit.WarnMean,
		WarnMax:  cfg.Audit.WarnMax,
		Pretty:   report.IsTerminal(os.Stdout),
	}

	var r *takepatcher.Report
	if stat.IsDir() {
		r, err = patcher.PatchProject(ctx, target)
	} else {
		var patched *takepatcher.Patched
		patched, err = patcher.PatchFile(ctx, target, source.NewHTTP(cfg.Paths.BufferURL))
		if patched != nil {
			r = &takepatcher.Report{Patched: []takepatcher.Patched{*patched}}
		}
	}
	if r != nil {
		if writeErr := report.Write(os.Stdout, r, reportOpts); writeErr != nil {
			logger.Errorf(ctx, "unable to print the report: %v", writeErr)
		}
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warnf(ctx, "interrupted")
		}
		logger.Errorf(ctx, "%v", err)
		return exitFatal
	}
	if r != nil {
		if targetsErr := r.Err(); targetsErr != nil {
			logger.Warnf(ctx, "%d file(s) were not patched: %v", len(r.NotPatched), targetsErr)
		}
	}
	return exitOK
}

func loadConfig(f flags) (*config.Config, error) {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return nil, err
	}

	changed := pflag.CommandLine.Changed
	if changed("pool-dir") {
		cfg.Paths.PoolDir = f.PoolDir
	}
	if changed("buffer-url") {
		cfg.Paths.BufferURL = f.BufferURL
	}
	if changed("output-dir") {
		cfg.Paths.OutputDir = f.OutputDir
	}
	if changed("marker-gain") {
		cfg.Marker.Gain = f.MarkerGain
	}
	if changed("cross-check") {
		cfg.Audit.CrossCheck = f.CrossCheck
	}

	if err := cfg.ExpandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}
