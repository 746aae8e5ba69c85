package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/werdl/get-rust/internal/channel"
	"github.com/werdl/get-rust/internal/fetch"
	"github.com/werdl/get-rust/internal/style"
)

// channelCmd represents the channel command
var channelCmd = &cobra.Command{
	Use:   "channel [stable|beta|nightly]...",
	Short: "Show which versions the release channels point to",
	Long: `Look up the current release of each channel in the channel manifests
published next to the archives.

Lookups are cached for two hours in ~/.get-rust/channel_cache.json; pass
--no-cache to always read the manifests.`,
	Example: `
  get-rust channel                # Show stable, beta and nightly
  get-rust channel stable         # Show only stable
  get-rust channel --output json  # Show the channels as JSON`,
	ValidArgs: []string{channel.Stable, channel.Beta, channel.Nightly},
	Args:      cobra.OnlyValidArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{channel.Stable, channel.Beta, channel.Nightly}
		}

		resolutions, err := resolveChannels(commandContext(cmd), args)
		if err != nil {
			return err
		}

		printOutput(cmd.OutOrStdout(), resolutions, func(w io.Writer) {
			printChannels(w, resolutions)
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(channelCmd)
}

func resolveChannels(ctx context.Context, names []string) ([]channel.Resolution, error) {
	downloader := fetch.NewDownloader(viper.GetDuration("timeout"))

	resolutions := make([]channel.Resolution, 0, len(names))
	for _, name := range names {
		res, err := resolveVersion(ctx, downloader, viper.GetString("base-url"), name)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", name, err)
		}
		resolutions = append(resolutions, res)
	}
	return resolutions, nil
}

func printChannels(w io.Writer, resolutions []channel.Resolution) {
	rows := make([][]string, 0, len(resolutions))
	for _, res := range resolutions {
		rows = append(rows, []string{res.Requested, res.Version, res.Release, res.Date})
	}
	printTable(w, []string{"CHANNEL", "VERSION", "RELEASE", "DATE"}, rows)

	if len(resolutions) > 0 && !viper.GetBool("quiet") {
		fmt.Fprintln(w)
		style.Info(w, fmt.Sprintf("Run 'get-rust install --version %s' to install it.", resolutions[0].Requested))
	}
}
