package host

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/werdl/get-rust/internal/triple"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		facts    Facts
		expected triple.Triple
	}{
		{"linux x86_64", Facts{Arch: "x86_64", OS: "linux"}, triple.New("x86_64", "unknown-linux", "gnu")},
		{"linux aarch64", Facts{Arch: "aarch64", OS: "linux"}, triple.New("aarch64", "unknown-linux", "gnu")},
		{"linux arm", Facts{Arch: "arm", OS: "linux"}, triple.New("arm", "unknown-linux", "gnueabi")},
		{"linux armv7", Facts{Arch: "armv7", OS: "linux"}, triple.New("armv7", "unknown-linux", "gnueabihf")},
		{"linux armv7s", Facts{Arch: "armv7s", OS: "linux"}, triple.New("armv7s", "unknown-linux", "gnueabihf")},
		{"linux mips64", Facts{Arch: "mips64", OS: "linux"}, triple.New("mips64", "unknown-linux", "gnuabi64")},
		{"linux mips64el", Facts{Arch: "mips64el", OS: "linux"}, triple.New("mips64el", "unknown-linux", "gnuabi64")},
		{"linux unknown arch", Facts{Arch: "sparc64", OS: "linux"}, triple.New("sparc64", "unknown-linux", "gnu")},
		{"macos", Facts{Arch: "aarch64", OS: "macos"}, triple.New("aarch64", "apple-darwin", "gnu")},
		{"windows", Facts{Arch: "x86_64", OS: "windows"}, triple.New("x86_64", "pc-windows", "msvc")},
		{"netbsd", Facts{Arch: "x86_64", OS: "netbsd"}, triple.New("x86_64", "unknown-netbsd", "gnu")},
		{"rumprun", Facts{Arch: "x86_64", OS: "netbsd", Rumprun: true}, triple.New("x86_64", "rumprun-netbsd", "gnu")},
		{"ios", Facts{Arch: "aarch64", OS: "ios"}, triple.New("aarch64", "apple-ios", "gnu")},
		{"freebsd", Facts{Arch: "x86_64", OS: "freebsd"}, triple.New("x86_64", "unknown-freebsd", "gnu")},
		{"illumos", Facts{Arch: "x86_64", OS: "illumos"}, triple.New("x86_64", "unknown-illumos", "gnu")},
		{"solaris", Facts{Arch: "x86_64", OS: "solaris"}, triple.New("x86_64", "unknown", "gnu")},
		{"unrecognized", Facts{Arch: "wasm", OS: "js"}, triple.New("wasm", "unknown", "failed")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.facts)
			assert.Equal(t, tt.expected, got)
			assert.True(t, got.Arch.Present && got.OS.Present && got.Env.Present)
		})
	}
}

func TestFactsFor(t *testing.T) {
	tests := []struct {
		goos, goarch, goarm string
		expected            Facts
	}{
		{"linux", "amd64", "", Facts{Arch: "x86_64", OS: "linux"}},
		{"darwin", "arm64", "", Facts{Arch: "aarch64", OS: "macos"}},
		{"windows", "386", "", Facts{Arch: "i686", OS: "windows"}},
		{"linux", "arm", "6", Facts{Arch: "arm", OS: "linux"}},
		{"linux", "arm", "7", Facts{Arch: "armv7", OS: "linux"}},
		{"linux", "arm", "7,softfloat", Facts{Arch: "armv7", OS: "linux"}},
		{"linux", "mips64le", "", Facts{Arch: "mips64el", OS: "linux"}},
		{"linux", "riscv64", "", Facts{Arch: "riscv64gc", OS: "linux"}},
		{"linux", "loong64", "", Facts{Arch: "loongarch64", OS: "linux"}},
		{"plan9", "wasm", "", Facts{Arch: "wasm", OS: "plan9"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FactsFor(tt.goos, tt.goarch, tt.goarm), "%s/%s", tt.goos, tt.goarch)
	}
}

func TestDetectCurrentHost(t *testing.T) {
	got := DetectCurrentHost()
	assert.True(t, got.Arch.Present)
	assert.True(t, got.OS.Present)
	assert.True(t, got.Env.Present)

	if runtime.GOOS == "linux" && runtime.GOARCH == "amd64" {
		assert.Equal(t, "x86_64-unknown-linux-gnu", got.String())
	}
}
