package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/werdl/get-rust/internal/channel"
)

func TestChannelCommand(t *testing.T) {
	server := distServer(t, "rust-1.76.0-x86_64-unknown-linux-gnu", "")

	out, err := executeCommand(t, "channel", "stable", "--no-cache", "--base-url", server.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "CHANNEL")
	assert.Contains(t, out, "stable   1.76.0   1.76.0 (07dca489a 2024-02-04)  2024-02-08")
	assert.Contains(t, out, "get-rust install --version stable")
}

func TestChannelCommandJSON(t *testing.T) {
	server := distServer(t, "rust-1.76.0-x86_64-unknown-linux-gnu", "")

	out, err := executeCommand(t, "channel", "stable", "--no-cache", "--base-url", server.URL, "--output", "json")
	require.NoError(t, err)

	var resolutions []channel.Resolution
	require.NoError(t, json.Unmarshal([]byte(out), &resolutions))
	require.Len(t, resolutions, 1)
	assert.Equal(t, channel.Resolution{
		Requested: "stable",
		Version:   "1.76.0",
		Release:   "1.76.0 (07dca489a 2024-02-04)",
		Date:      "2024-02-08",
	}, resolutions[0])
}

func TestChannelCommandMissingManifest(t *testing.T) {
	server := distServer(t, "rust-1.76.0-x86_64-unknown-linux-gnu", "")

	_, err := executeCommand(t, "channel", "nightly", "--no-cache", "--base-url", server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolving nightly")
}

func TestChannelCommandRejectsUnknownChannel(t *testing.T) {
	_, err := executeCommand(t, "channel", "lts")
	assert.Error(t, err)
}
