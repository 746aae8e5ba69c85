package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/werdl/get-rust/internal/host"
	"github.com/werdl/get-rust/internal/install"
)

// Build-time variables (set by goreleaser or build scripts)
var (
	Version   = "dev"
	Commit    = "unknown"
	Date      = "unknown"
	BuiltBy   = "unknown"
	GoVersion = runtime.Version()
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display version information for get-rust, including build details and the toolchain it installs by default.`,
	Example: `
  get-rust version               # Show basic version info
  get-rust version --output json # Show version info as JSON`,
	Run: func(cmd *cobra.Command, args []string) {
		printOutput(cmd.OutOrStdout(), versionInfo(), func(w io.Writer) {
			printVersionText(w, versionInfo())
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// VersionInfo represents version information
type VersionInfo struct {
	Version        string `json:"version" yaml:"version"`
	Commit         string `json:"commit" yaml:"commit"`
	Date           string `json:"date" yaml:"date"`
	BuiltBy        string `json:"built_by" yaml:"built_by"`
	GoVersion      string `json:"go_version" yaml:"go_version"`
	Platform       string `json:"platform" yaml:"platform"`
	Host           string `json:"host" yaml:"host"`
	DefaultVersion string `json:"default_rust_version" yaml:"default_rust_version"`
}

func versionInfo() VersionInfo {
	return VersionInfo{
		Version:        Version,
		Commit:         Commit,
		Date:           Date,
		BuiltBy:        BuiltBy,
		GoVersion:      GoVersion,
		Platform:       fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Host:           host.DetectCurrentHost().String(),
		DefaultVersion: install.DefaultVersion,
	}
}

func printVersionText(w io.Writer, info VersionInfo) {
	fmt.Fprintf(w, "get-rust %s (commit: %s, built: %s)\n", info.Version, info.Commit, info.Date)
	fmt.Fprintf(w, "host: %s, default toolchain: %s\n", info.Host, info.DefaultVersion)
}
