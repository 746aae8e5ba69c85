package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stoewer/go-strcase"
	"gopkg.in/yaml.v3"

	"github.com/werdl/get-rust/internal/install"
	"github.com/werdl/get-rust/internal/style"
)

const envPrefix = "GET_RUST"

// FileConfig is the layout of config.yaml. Every key can also be set with a
// GET_RUST_ environment variable or the flag of the same name.
type FileConfig struct {
	Version        string `json:"version" yaml:"version" jsonschema:"description=Rust release or channel (stable or beta or nightly) to install,default=1.76.0"`
	Target         string `json:"target,omitempty" yaml:"target,omitempty" jsonschema:"description=Target triple to install for instead of the detected host"`
	Await          bool   `json:"await" yaml:"await" jsonschema:"description=Wait for install.sh and fail when it fails"`
	SkipValidation bool   `json:"skip-validation" yaml:"skip-validation" jsonschema:"description=Request target triples outside the known lists"`
	Dir            string `json:"dir" yaml:"dir" jsonschema:"description=Directory the archive is unpacked into,default=."`
	BaseURL        string `json:"base-url" yaml:"base-url" jsonschema:"description=Distribution server,format=uri,default=https://static.rust-lang.org/dist"`
	Timeout        string `json:"timeout" yaml:"timeout" jsonschema:"description=HTTP timeout as a Go duration where 0s means none,default=0s"`
	MetricsFile    string `json:"metrics-file,omitempty" yaml:"metrics-file,omitempty" jsonschema:"description=File to write run metrics to in Prometheus text format"`
	Prefix         string `json:"prefix,omitempty" yaml:"prefix,omitempty" jsonschema:"description=Installation prefix passed to install.sh"`
	NoCache        bool   `json:"no-cache" yaml:"no-cache" jsonschema:"description=Do not use the channel cache"`
	LogLevel       string `json:"log-level" yaml:"log-level" jsonschema:"enum=disabled,enum=debug,enum=info,enum=warn,enum=error,default=disabled"`
	Output         string `json:"output" yaml:"output" jsonschema:"enum=text,enum=json,enum=yaml,default=text"`
	Quiet          bool   `json:"quiet" yaml:"quiet" jsonschema:"description=Suppress non-essential output"`
}

// configKeys lists the viper keys in the order they are shown
var configKeys = []string{
	"version", "target", "await", "skip-validation", "dir", "base-url", "timeout",
	"metrics-file", "prefix", "no-cache", "log-level", "output", "quiet",
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration get-rust would run with after merging flags,
GET_RUST_ environment variables and config.yaml.`,
	Example: `
  get-rust config                  # Show the effective configuration
  get-rust config init             # Write ~/.get-rust/config.yaml
  get-rust config schema           # Print the JSON schema of config.yaml`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printOutput(cmd.OutOrStdout(), effectiveConfig(), printConfig)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with the default settings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")

		written, err := writeDefaultConfig(path, force)
		if err != nil {
			return err
		}
		style.Success(cmd.OutOrStdout(), fmt.Sprintf("Wrote %s", written))
		return nil
	},
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Output the JSON schema of config.yaml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := NewConfigSchema()
		if err != nil {
			return fmt.Errorf("generating schema: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(schema))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSchemaCmd)

	configInitCmd.Flags().Bool("force", false, "overwrite an existing config file")
}

// NewConfigSchema returns the indented JSON schema of FileConfig
func NewConfigSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := r.Reflect(&FileConfig{})
	schema.Title = "get-rust configuration"
	return json.MarshalIndent(schema, "", "  ")
}

// DefaultConfig returns the settings used when nothing is configured
func DefaultConfig() FileConfig {
	return FileConfig{
		Version:  install.DefaultVersion,
		Dir:      ".",
		BaseURL:  install.DefaultBaseURL,
		Timeout:  "0s",
		LogLevel: "disabled",
		Output:   "text",
	}
}

func effectiveConfig() FileConfig {
	return FileConfig{
		Version:        viper.GetString("version"),
		Target:         viper.GetString("target"),
		Await:          viper.GetBool("await"),
		SkipValidation: viper.GetBool("skip-validation"),
		Dir:            viper.GetString("dir"),
		BaseURL:        viper.GetString("base-url"),
		Timeout:        viper.GetDuration("timeout").String(),
		MetricsFile:    viper.GetString("metrics-file"),
		Prefix:         viper.GetString("prefix"),
		NoCache:        viper.GetBool("no-cache"),
		LogLevel:       viper.GetString("log-level"),
		Output:         viper.GetString("output"),
		Quiet:          viper.GetBool("quiet"),
	}
}

// envName is the environment variable that sets key
func envName(key string) string {
	return envPrefix + "_" + strcase.UpperSnakeCase(key)
}

func printConfig(w io.Writer) {
	rows := make([][]string, 0, len(configKeys))
	for _, key := range configKeys {
		rows = append(rows, []string{key, fmt.Sprint(viper.Get(key)), envName(key)})
	}
	printTable(w, []string{"KEY", "VALUE", "ENV"}, rows)

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintln(w)
		style.Info(w, fmt.Sprintf("Config file: %s", used))
	}
}

// writeDefaultConfig writes DefaultConfig as YAML to path, defaulting to
// ~/.get-rust/config.yaml, and returns the path written.
func writeDefaultConfig(path string, force bool) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".get-rust", "config.yaml")
	}

	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return path, nil
}
