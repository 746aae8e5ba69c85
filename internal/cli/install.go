package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/werdl/get-rust/internal/channel"
	"github.com/werdl/get-rust/internal/fetch"
	"github.com/werdl/get-rust/internal/host"
	"github.com/werdl/get-rust/internal/install"
	"github.com/werdl/get-rust/internal/style"
	"github.com/werdl/get-rust/internal/triple"
)

// installCmd represents the install command
var installCmd = &cobra.Command{
	Use:   "install [flags] [-- installer-args...]",
	Short: "Download and install a Rust toolchain",
	Long: `Download the prebuilt Rust archive for a target triple, unpack it into
the working directory and run the install.sh it contains.

The target defaults to the triple detected for this machine. The version can
be a release such as 1.76.0 or one of the channels stable, beta and nightly.
Arguments after -- are passed to install.sh unchanged.`,
	Example: `
  get-rust install                                  # Install 1.76.0 for this machine
  get-rust install --version stable                 # Install the current stable release
  get-rust install --target aarch64-unknown-linux-gnu
  get-rust install --await --prefix ~/.local        # Wait for install.sh and install under ~/.local
  get-rust install --metrics-file get-rust.prom     # Write run metrics in textfile format`,
	Args: cobra.ArbitraryArgs,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)

	// get-rust with no subcommand installs using config and environment values
	rootCmd.Args = cobra.NoArgs
	rootCmd.RunE = runInstall

	installCmd.Flags().String("version", install.DefaultVersion, "version to install (a release or stable, beta, nightly)")
	installCmd.Flags().String("target", "", "target triple to install for (default is the detected host)")
	installCmd.Flags().Bool("await", false, "wait for install.sh and fail if it fails")
	installCmd.Flags().Bool("skip-validation", false, "request targets that are not in the known triple lists")
	installCmd.Flags().String("dir", ".", "directory the archive is unpacked into")
	installCmd.Flags().String("metrics-file", "", "write run metrics to this file in Prometheus text format")
	installCmd.Flags().String("prefix", "", "installation prefix passed to install.sh")

	for _, name := range []string{"version", "target", "await", "skip-validation", "dir", "metrics-file", "prefix"} {
		_ = viper.BindPFlag(name, installCmd.Flags().Lookup(name))
	}
}

// installSummary is printed when --output is json or yaml
type installSummary struct {
	Target      string          `json:"target" yaml:"target"`
	Version     string          `json:"version" yaml:"version"`
	URL         string          `json:"url" yaml:"url"`
	Dir         string          `json:"dir" yaml:"dir"`
	State       install.State   `json:"state" yaml:"state"`
	Transitions []install.State `json:"transitions" yaml:"transitions"`
	Error       string          `json:"error,omitempty" yaml:"error,omitempty"`
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	structured := viper.GetString("output") == "json" || viper.GetString("output") == "yaml"

	// status goes to stderr when stdout carries structured output
	status := out
	if structured {
		status = cmd.ErrOrStderr()
	}

	target := host.DetectCurrentHost()
	if s := viper.GetString("target"); s != "" {
		target = triple.ParseKnown(s)
	}
	if !viper.GetBool("quiet") {
		fmt.Fprintf(status, "Target triple: %s\n", style.Target(target.String()))
	}

	downloader := fetch.NewDownloader(viper.GetDuration("timeout"))
	baseURL := viper.GetString("base-url")

	resolution, err := resolveVersion(ctx, downloader, baseURL, viper.GetString("version"))
	if err != nil {
		return err
	}
	log.Debug().Str("requested", resolution.Requested).Str("version", resolution.Version).Msg("version resolved")

	if !viper.GetBool("quiet") {
		fmt.Fprintf(status, "Installing Rust for target: %s\n", style.Target(target.String()))
	}

	registry := prometheus.NewRegistry()
	pipeline := install.New(install.Config{
		Version:        resolution.Version,
		BaseURL:        baseURL,
		WorkDir:        viper.GetString("dir"),
		InstallerArgs:  installerArgs(viper.GetString("prefix"), args),
		AwaitInstaller: viper.GetBool("await"),
		SkipValidation: viper.GetBool("skip-validation"),
	},
		install.WithDownloader(downloader),
		install.WithReporter(style.NewStatusReporter(style.NewSpinner(status), isFailureMessage)),
		install.WithMetrics(install.NewMetrics(registry)),
	)

	start := time.Now()
	result, runErr := pipeline.Run(ctx, target)
	log.Debug().
		Str("state", result.State.String()).
		Dur("duration", time.Since(start)).
		Interface("transitions", result.Transitions).
		Msg("install finished")

	if path := viper.GetString("metrics-file"); path != "" {
		if err := prometheus.WriteToTextfile(path, registry); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to write metrics")
			style.Warning(status, fmt.Sprintf("could not write metrics to %s: %s", path, err))
		}
	}

	if structured {
		summary := installSummary{
			Target:      target.String(),
			Version:     result.Request.Version,
			URL:         result.URL,
			Dir:         result.Dir,
			State:       result.State,
			Transitions: result.Transitions,
		}
		if runErr != nil {
			summary.Error = runErr.Error()
		}
		printOutput(out, summary, func(io.Writer) {})
	}

	if runErr != nil {
		// the reporter already printed the failure; only the exit status is left
		log.Debug().Err(runErr).Msg("install failed")
		failed = true
	}
	return nil
}

func resolveVersion(ctx context.Context, downloader channel.Downloader, baseURL, version string) (channel.Resolution, error) {
	resolver := &channel.Resolver{BaseURL: baseURL, Downloader: downloader}
	if channel.IsChannel(strings.TrimSpace(version)) && !viper.GetBool("no-cache") {
		cache, err := channel.NewCache("")
		if err != nil {
			log.Debug().Err(err).Msg("channel cache unavailable")
		} else {
			resolver.Cache = cache
		}
	}
	return resolver.Resolve(ctx, version)
}

func installerArgs(prefix string, extra []string) []string {
	var args []string
	if prefix != "" {
		args = append(args, "--prefix="+prefix)
	}
	return append(args, extra...)
}

func isFailureMessage(msg string) bool {
	return strings.HasPrefix(msg, "Failed") || strings.HasPrefix(msg, install.ErrUnsupportedPlatform.Error())
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
