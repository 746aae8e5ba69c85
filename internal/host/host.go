// Package host guesses the target triple of the running machine.
//
// No toolchain is assumed to be installed, so the triple is derived from
// the platform facts compiled into this binary using fixed lookup tables
// rather than by asking rustc.
package host

import (
	"runtime"
	"runtime/debug"

	"github.com/werdl/get-rust/internal/triple"
)

// Facts are the compiled-in platform facts, named the way rust names them
// (x86_64, aarch64, macos, ...).
type Facts struct {
	Arch string
	OS   string

	// Rumprun marks a NetBSD build running on the rump kernel runtime.
	Rumprun bool
}

var goArchs = map[string]string{
	"amd64":    "x86_64",
	"386":      "i686",
	"arm64":    "aarch64",
	"arm":      "arm",
	"mips":     "mips",
	"mipsle":   "mipsel",
	"mips64":   "mips64",
	"mips64le": "mips64el",
	"ppc64":    "powerpc64",
	"ppc64le":  "powerpc64le",
	"riscv64":  "riscv64gc",
	"s390x":    "s390x",
	"loong64":  "loongarch64",
}

var goOSes = map[string]string{
	"darwin": "macos",
}

var osFamilies = map[string]string{
	"linux":   "unknown-linux",
	"macos":   "apple-darwin",
	"windows": "pc-windows",
	"netbsd":  "unknown-netbsd",
	"ios":     "apple-ios",
	"freebsd": "unknown-freebsd",
	"illumos": "unknown-illumos",
}

var linuxEnvs = map[string]string{
	"arm":      "gnueabi",
	"armv7":    "gnueabihf",
	"armv7s":   "gnueabihf",
	"mips64":   "gnuabi64",
	"mips64el": "gnuabi64",
}

var osEnvs = map[string]string{
	"windows": "msvc",
	"solaris": "gnu",
	"macos":   "gnu",
	"netbsd":  "gnu",
	"ios":     "gnu",
	"freebsd": "gnu",
	"illumos": "gnu",
}

const (
	unknownOS  = "unknown"
	unknownEnv = "failed"
)

// CurrentFacts reports the facts this binary was compiled for
func CurrentFacts() Facts {
	return FactsFor(runtime.GOOS, runtime.GOARCH, goarm())
}

// FactsFor translates Go's GOOS/GOARCH (and GOARM for 32-bit arm) into Facts.
// Unknown values pass through unchanged.
func FactsFor(goos, goarch, goarm string) Facts {
	f := Facts{Arch: goarch, OS: goos}
	if arch, ok := goArchs[goarch]; ok {
		f.Arch = arch
	}
	if os, ok := goOSes[goos]; ok {
		f.OS = os
	}
	if f.Arch == "arm" && len(goarm) > 0 && goarm[0] == '7' {
		f.Arch = "armv7"
	}
	return f
}

func goarm() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "GOARM" {
			return s.Value
		}
	}
	return ""
}

// Detect maps facts to a fully populated triple. It never fails: an
// unrecognized OS yields the family "unknown" and the environment "failed".
func Detect(f Facts) triple.Triple {
	return triple.New(f.Arch, osFamily(f), environment(f))
}

// DetectCurrentHost returns the triple for the machine this binary runs on
func DetectCurrentHost() triple.Triple {
	return Detect(CurrentFacts())
}

func osFamily(f Facts) string {
	if f.OS == "netbsd" && f.Rumprun {
		return "rumprun-netbsd"
	}
	if family, ok := osFamilies[f.OS]; ok {
		return family
	}
	return unknownOS
}

func environment(f Facts) string {
	if f.OS == "linux" {
		if env, ok := linuxEnvs[f.Arch]; ok {
			return env
		}
		return "gnu"
	}
	if env, ok := osEnvs[f.OS]; ok {
		return env
	}
	return unknownEnv
}
