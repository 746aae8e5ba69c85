package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/werdl/get-rust/internal/testhelper"
)

func TestExecute(t *testing.T) {
	// Create a minimal command for testing
	originalRootCmd := rootCmd

	testCmd := &cobra.Command{
		Use:   "get-rust",
		Short: "Test command",
		Run: func(cmd *cobra.Command, args []string) {
			// Do nothing
		},
	}

	testCmd.SetArgs([]string{})

	rootCmd = testCmd
	defer func() { rootCmd = originalRootCmd }()

	err := Execute()
	assert.NoError(t, err)
}

func TestExecuteReportsFailure(t *testing.T) {
	originalRootCmd := rootCmd

	testCmd := &cobra.Command{
		Use: "get-rust",
		Run: func(cmd *cobra.Command, args []string) {
			failed = true
		},
	}

	testCmd.SetArgs([]string{})

	rootCmd = testCmd
	defer func() {
		rootCmd = originalRootCmd
		failed = false
	}()

	err := Execute()
	assert.ErrorIs(t, err, ErrFailed)
}

func TestGetVersion(t *testing.T) {
	version := getVersion()
	assert.Contains(t, version, "dev")
	assert.Contains(t, version, "unknown")
}

func TestInitLogging(t *testing.T) {
	require.NotPanics(t, func() {
		initLogging()
	})
}

func TestInitConfig(t *testing.T) {
	require.NotPanics(t, func() {
		initConfig()
	})
}

func TestRootRegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, name := range []string{"install", "target", "channel", "version"} {
		assert.True(t, names[name], "missing %s command", name)
	}

	// --version on the root prints the build version, the toolchain version lives on install
	if f := rootCmd.Flags().Lookup("version"); f != nil {
		assert.Equal(t, "bool", f.Value.Type())
	}
	require.NotNil(t, installCmd.Flags().Lookup("version"))
	assert.Equal(t, "1.76.0", installCmd.Flags().Lookup("version").DefValue)
}

func TestIsFailureMessage(t *testing.T) {
	assert.True(t, isFailureMessage("Failed to download"))
	assert.True(t, isFailureMessage("Failed to unpack archive"))
	assert.True(t, isFailureMessage("unsupported platform: sparc-unknown-linux"))
	assert.False(t, isFailureMessage("Done"))
	assert.False(t, isFailureMessage("Downloading..."))
}

func TestPrintTable(t *testing.T) {
	var out bytes.Buffer
	printTable(&out, []string{"NAME", "VALUE"}, [][]string{
		{"stable", "1.76.0"},
		{"nightly", ""},
	})

	assert.Equal(t, "NAME     VALUE\n-------  ------\nstable   1.76.0\nnightly\n", out.String())

	out.Reset()
	printTable(&out, []string{"NAME"}, nil)
	assert.Empty(t, out.String())
}

// executeCommand runs the real command tree with args and restores flag
// defaults afterwards, since cobra keeps parsed values between runs.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GET_RUST_TEST", "true")
	t.Cleanup(func() {
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		failed = false
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
