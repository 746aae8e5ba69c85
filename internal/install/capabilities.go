package install

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// Downloader fetches a URL into w. Anything but a successful response is an error.
type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) error
}

// Archive decodes a fetched toolchain archive
type Archive interface {
	Decompress(r io.Reader) (io.ReadCloser, error)
	Unpack(r io.Reader, dest string) error
}

// Spawner starts the bundled installer. With await set it waits for the
// installer and returns its failure; otherwise it returns once the
// process has started.
type Spawner interface {
	Start(ctx context.Context, path, dir string, args []string, await bool) error
}

// Reporter displays pipeline status. SetMessage may be called any number
// of times; Finish is called exactly once with the terminal message.
type Reporter interface {
	SetMessage(msg string)
	Finish(msg string)
}

// NopReporter discards status updates
type NopReporter struct{}

func (NopReporter) SetMessage(string) {}
func (NopReporter) Finish(string)     {}

// ExecSpawner runs the installer with os/exec
type ExecSpawner struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (s ExecSpawner) Start(ctx context.Context, path, dir string, args []string, await bool) error {
	var cmd *exec.Cmd
	if await {
		cmd = exec.CommandContext(ctx, path, args...) // #nosec G204 - path is built from the extraction dir
	} else {
		// a detached installer must outlive cancellation of the run
		cmd = exec.Command(path, args...) // #nosec G204 - path is built from the extraction dir
	}
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", path, err)
	}

	log.Debug().Str("path", path).Int("pid", cmd.Process.Pid).Bool("await", await).Msg("installer started")

	if !await {
		return cmd.Process.Release()
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("installer exited: %w", err)
	}
	return nil
}
