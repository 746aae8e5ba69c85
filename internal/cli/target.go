package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/werdl/get-rust/internal/host"
	"github.com/werdl/get-rust/internal/style"
	"github.com/werdl/get-rust/internal/triple"
)

// targetCmd represents the target command
var targetCmd = &cobra.Command{
	Use:   "target [triple]",
	Short: "Show the target triple for this machine",
	Long: `Show the target triple detected for this machine, or check a given triple
against the known architectures, OS families and environments.`,
	Example: `
  get-rust target                            # Show the detected triple
  get-rust target riscv64gc-unknown-linux-gnu
  get-rust target --list                     # List the known triple components
  get-rust target --output json              # Show the detected triple as JSON`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		list, _ := cmd.Flags().GetBool("list")
		if list {
			printOutput(cmd.OutOrStdout(), knownComponents(), printComponents)
			return
		}

		t := host.DetectCurrentHost()
		detected := true
		if len(args) == 1 {
			t = triple.ParseKnown(args[0])
			detected = false
		}
		printOutput(cmd.OutOrStdout(), describeTarget(t, detected), func(w io.Writer) {
			printTarget(w, describeTarget(t, detected))
		})
	},
}

func init() {
	rootCmd.AddCommand(targetCmd)

	targetCmd.Flags().Bool("list", false, "list the known architectures, OS families and environments")
}

// TargetInfo describes a target triple
type TargetInfo struct {
	Triple   string `json:"triple" yaml:"triple"`
	Arch     string `json:"arch,omitempty" yaml:"arch,omitempty"`
	OS       string `json:"os,omitempty" yaml:"os,omitempty"`
	Env      string `json:"env,omitempty" yaml:"env,omitempty"`
	Detected bool   `json:"detected" yaml:"detected"`
	Valid    bool   `json:"valid" yaml:"valid"`
	Problem  string `json:"problem,omitempty" yaml:"problem,omitempty"`
}

// Components lists the values each part of a valid triple can take
type Components struct {
	Architectures []string `json:"architectures" yaml:"architectures"`
	OSFamilies    []string `json:"os_families" yaml:"os_families"`
	Environments  []string `json:"environments" yaml:"environments"`
}

func describeTarget(t triple.Triple, detected bool) TargetInfo {
	info := TargetInfo{
		Triple:   t.String(),
		Arch:     t.Arch.Value,
		OS:       t.OS.Value,
		Env:      t.Env.Value,
		Detected: detected,
		Valid:    true,
	}
	if err := t.Validate(); err != nil {
		info.Valid = false
		info.Problem = err.Error()
	}
	return info
}

func knownComponents() Components {
	return Components{
		Architectures: triple.Architectures(),
		OSFamilies:    triple.OSFamilies(),
		Environments:  triple.Environments(),
	}
}

func printTarget(w io.Writer, info TargetInfo) {
	if info.Valid {
		style.Success(w, fmt.Sprintf("Target triple: %s", info.Triple))
		return
	}
	style.Warning(w, fmt.Sprintf("Target triple: %s (%s)", info.Triple, info.Problem))
}

func printComponents(w io.Writer) {
	c := knownComponents()

	rows := make([][]string, 0, len(c.Architectures))
	for i := range c.Architectures {
		rows = append(rows, []string{at(c.Architectures, i), at(c.OSFamilies, i), at(c.Environments, i)})
	}
	printTable(w, []string{"ARCH", "OS", "ENV"}, rows)
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
