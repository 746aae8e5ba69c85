// Package install downloads a prebuilt toolchain archive, unpacks it and
// starts its bundled installer.
//
// A run is a fixed sequence of stages. Each stage either advances the
// pipeline or moves it to Failed; there is no retry and no rollback, so a
// failed install step leaves the extracted directory in place.
package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/werdl/get-rust/internal/archive"
	"github.com/werdl/get-rust/internal/fetch"
	"github.com/werdl/get-rust/internal/triple"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrDownload            = errors.New("download failed")
	ErrUnpack              = errors.New("unpack failed")
	ErrInstall             = errors.New("install failed")
)

// Status messages shown while the pipeline runs
const (
	MsgDownloading    = "Downloading..."
	MsgExtracting     = "Extracting..."
	MsgUnpacking      = "Unpacking..."
	MsgInstalling     = "Running install.sh..."
	MsgDone           = "Done"
	MsgDownloadFailed = "Failed to download"
	MsgUnpackFailed   = "Failed to unpack archive"
	MsgInstallFailed  = "Failed to run install.sh"
)

// Config controls a pipeline run
type Config struct {
	Version string
	BaseURL string
	WorkDir string

	// InstallerArgs are passed to install.sh, e.g. --prefix=/opt/rust.
	InstallerArgs []string

	// AwaitInstaller waits for install.sh and reports its exit status.
	// When false the installer is started and left running.
	AwaitInstaller bool

	// SkipValidation sends unrecognized targets to the server anyway.
	SkipValidation bool
}

func (c Config) withDefaults() Config {
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.WorkDir == "" {
		c.WorkDir = "."
	}
	return c
}

// Result describes a finished run
type Result struct {
	Request     Request
	URL         string
	Dir         string
	State       State
	Transitions []State
	Err         error
}

// Option configures a Pipeline
type Option func(*Pipeline)

func WithDownloader(d Downloader) Option { return func(p *Pipeline) { p.downloader = d } }
func WithArchive(a Archive) Option       { return func(p *Pipeline) { p.archive = a } }
func WithSpawner(s Spawner) Option       { return func(p *Pipeline) { p.spawner = s } }
func WithReporter(r Reporter) Option     { return func(p *Pipeline) { p.reporter = r } }
func WithMetrics(m *Metrics) Option      { return func(p *Pipeline) { p.metrics = m } }

// Pipeline installs one toolchain. A Pipeline is not safe for concurrent
// runs; create one per run.
type Pipeline struct {
	cfg        Config
	downloader Downloader
	archive    Archive
	spawner    Spawner
	reporter   Reporter
	metrics    *Metrics

	result    *Result
	stageFrom time.Time
}

// New creates a pipeline with the default HTTP, tar.gz and os/exec capabilities
func New(cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:        cfg.withDefaults(),
		downloader: fetch.NewDownloader(0),
		archive:    archive.TarGz{},
		spawner:    ExecSpawner{},
		reporter:   NopReporter{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run drives the pipeline for target to a terminal state. The returned
// Result is never nil; the error is non-nil exactly when the run Failed.
func (p *Pipeline) Run(ctx context.Context, target triple.Triple) (*Result, error) {
	req := Request{Target: target, Version: p.cfg.Version}
	p.result = &Result{
		Request:     req,
		URL:         req.URL(p.cfg.BaseURL),
		Dir:         req.Dir(p.cfg.WorkDir),
		State:       Idle,
		Transitions: []State{Idle},
	}

	logger := log.With().Str("target", target.String()).Str("version", req.Version).Logger()

	// an empty triple names no archive, validation or not
	if target.IsZero() {
		return p.fail(fmt.Sprintf("%s: no target", ErrUnsupportedPlatform), fmt.Errorf("%w: empty target triple", ErrUnsupportedPlatform))
	}
	if !p.cfg.SkipValidation {
		if err := target.Validate(); err != nil {
			return p.fail(fmt.Sprintf("%s: %s", ErrUnsupportedPlatform, target), fmt.Errorf("%w: %w", ErrUnsupportedPlatform, err))
		}
	}

	p.enter(Downloading, MsgDownloading)
	logger.Debug().Str("url", p.result.URL).Msg("downloading toolchain")

	file, err := p.download(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("download failed")
		return p.fail(MsgDownloadFailed, fmt.Errorf("%w: %w", ErrDownload, err))
	}
	defer func() {
		_ = file.Close()
		_ = os.Remove(file.Name())
	}()

	p.enter(Extracting, MsgExtracting)
	stream, err := p.archive.Decompress(file)
	if err != nil {
		// a broken gzip header shows up as an unpack failure
		p.enter(Unpacking, MsgUnpacking)
		return p.fail(MsgUnpackFailed, fmt.Errorf("%w: %w", ErrUnpack, err))
	}
	defer func() { _ = stream.Close() }()

	p.enter(Unpacking, MsgUnpacking)
	logger.Debug().Str("dir", p.result.Dir).Msg("unpacking toolchain")
	if err := p.archive.Unpack(stream, p.result.Dir); err != nil {
		logger.Debug().Err(err).Msg("unpack failed")
		return p.fail(MsgUnpackFailed, fmt.Errorf("%w: %w", ErrUnpack, err))
	}

	p.enter(Installing, MsgInstalling)
	installer, err := filepath.Abs(req.InstallerPath(p.cfg.WorkDir))
	if err != nil {
		return p.fail(MsgInstallFailed, fmt.Errorf("%w: %w", ErrInstall, err))
	}
	if err := p.spawner.Start(ctx, installer, p.cfg.WorkDir, p.cfg.InstallerArgs, p.cfg.AwaitInstaller); err != nil {
		logger.Debug().Err(err).Msg("installer failed")
		return p.fail(MsgInstallFailed, fmt.Errorf("%w: %w", ErrInstall, err))
	}

	p.finish(Done, MsgDone)
	logger.Info().Str("dir", p.result.Dir).Msg("toolchain installed")
	return p.result, nil
}

// download fetches the archive into a temporary file rewound for reading.
// Nothing is created under the work dir until the download succeeds.
func (p *Pipeline) download(ctx context.Context) (*os.File, error) {
	file, err := os.CreateTemp("", "get-rust-*.tar.gz")
	if err != nil {
		return nil, fmt.Errorf("creating archive file: %w", err)
	}

	counter := &countingWriter{w: file}
	err = p.downloader.Download(ctx, p.result.URL, counter)
	p.metrics.addBytes(counter.n)
	if err == nil {
		_, err = file.Seek(0, io.SeekStart)
	}
	if err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return nil, err
	}
	return file, nil
}

func (p *Pipeline) enter(s State, msg string) {
	if p.result.State.Terminal() {
		return
	}
	p.closeStage()
	p.result.State = s
	p.result.Transitions = append(p.result.Transitions, s)
	p.stageFrom = time.Now()
	p.reporter.SetMessage(msg)
}

func (p *Pipeline) closeStage() {
	if !p.stageFrom.IsZero() {
		p.metrics.observeStage(p.result.State, time.Since(p.stageFrom))
	}
}

func (p *Pipeline) finish(s State, msg string) {
	if p.result.State.Terminal() {
		return
	}
	p.closeStage()
	p.stageFrom = time.Time{}
	p.result.State = s
	p.result.Transitions = append(p.result.Transitions, s)
	p.metrics.observeRun(p.result.Request, s)
	p.reporter.Finish(msg)
}

func (p *Pipeline) fail(msg string, err error) (*Result, error) {
	p.result.Err = err
	p.finish(Failed, msg)
	return p.result, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
