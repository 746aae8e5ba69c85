// Package triple models Rust target triples: the arch-os-env names the
// dist server uses for prebuilt toolchain archives.
package triple

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnsupported is returned by Validate when a component is outside its known set.
var ErrUnsupported = errors.New("unsupported target component")

var archs = []string{
	"i386",
	"i586",
	"i686",
	"x86_64",
	"arm",
	"armv7",
	"armv7s",
	"aarch64",
	"mips",
	"mipsel",
	"mips64",
	"mips64el",
	"powerpc",
	"powerpc64",
	"powerpc64le",
	"riscv64gc",
	"s390x",
	"loongarch64",
}

var osFamilies = []string{
	"pc-windows",
	"unknown-linux",
	"apple-darwin",
	"unknown-netbsd",
	"apple-ios",
	"linux",
	"rumprun-netbsd",
	"unknown-freebsd",
	"unknown-illumos",
}

var envs = []string{
	"gnu",
	"gnux32",
	"msvc",
	"gnueabi",
	"gnueabihf",
	"gnuabi64",
	"androideabi",
	"android",
	"musl",
}

// Architectures returns the recognized architecture names
func Architectures() []string { return slices.Clone(archs) }

// OSFamilies returns the recognized OS family names
func OSFamilies() []string { return slices.Clone(osFamilies) }

// Environments returns the recognized environment (ABI) names
func Environments() []string { return slices.Clone(envs) }

// Part is one optional component of a target triple. The zero value is absent.
type Part struct {
	Value   string
	Present bool
}

// Some returns a present Part holding v
func Some(v string) Part {
	return Part{Value: v, Present: true}
}

// compare orders absent parts before present ones, then by value.
func (p Part) compare(o Part) int {
	switch {
	case !p.Present && !o.Present:
		return 0
	case !p.Present:
		return -1
	case !o.Present:
		return 1
	}
	return strings.Compare(p.Value, o.Value)
}

func (p Part) in(set []string) bool {
	return !p.Present || slices.Contains(set, p.Value)
}

// Triple identifies a build target by architecture, OS family and environment.
// Triples are comparable and can be used as map keys.
type Triple struct {
	Arch Part
	OS   Part
	Env  Part
}

// New returns a triple with all three components present
func New(arch, os, env string) Triple {
	return Triple{Arch: Some(arch), OS: Some(os), Env: Some(env)}
}

// Parse splits s on '-' and assigns at most three segments to
// Arch, OS and Env in that order. Extra segments are dropped and
// missing ones are left absent. Parse never fails.
//
// Note that OS families such as "unknown-linux" contain a hyphen
// themselves, so Parse("x86_64-unknown-linux-gnu") yields
// {x86_64, unknown, linux}.
func Parse(s string) Triple {
	var t Triple
	parts := []*Part{&t.Arch, &t.OS, &t.Env}
	for i, seg := range strings.SplitN(s, "-", len(parts)+1) {
		if i == len(parts) {
			break
		}
		*parts[i] = Some(seg)
	}
	return t
}

// ParseKnown splits s the way the dist server names archives. Known
// architectures, OS families and environments are matched whole, so
// hyphenated OS families such as "unknown-linux" survive. Input that does
// not decompose into known values falls back to Parse.
func ParseKnown(s string) Triple {
	for _, arch := range archs {
		rest, ok := strings.CutPrefix(s, arch+"-")
		if !ok {
			continue
		}
		for _, family := range osFamilies {
			env, ok := strings.CutPrefix(rest, family)
			if !ok {
				continue
			}
			if env == "" {
				return Triple{Arch: Some(arch), OS: Some(family)}
			}
			if env, ok = strings.CutPrefix(env, "-"); ok && slices.Contains(envs, env) {
				return New(arch, family, env)
			}
		}
	}
	return Parse(s)
}

// String renders the canonical arch[-os[-env]] form. Absent parts are
// skipped; OS and Env always carry their leading hyphen, so a triple with
// no Arch renders as "-os-env".
func (t Triple) String() string {
	var b strings.Builder
	if t.Arch.Present {
		b.WriteString(t.Arch.Value)
	}
	for _, p := range []Part{t.OS, t.Env} {
		if p.Present {
			b.WriteByte('-')
			b.WriteString(p.Value)
		}
	}
	return b.String()
}

// IsValid reports whether every present component is a recognized value.
func (t Triple) IsValid() bool {
	return t.Validate() == nil
}

// Validate returns an error naming the first unrecognized component.
func (t Triple) Validate() error {
	switch {
	case !t.Arch.in(archs):
		return fmt.Errorf("%w: architecture %q", ErrUnsupported, t.Arch.Value)
	case !t.OS.in(osFamilies):
		return fmt.Errorf("%w: os family %q", ErrUnsupported, t.OS.Value)
	case !t.Env.in(envs):
		return fmt.Errorf("%w: environment %q", ErrUnsupported, t.Env.Value)
	}
	return nil
}

// IsZero reports whether all components are absent
func (t Triple) IsZero() bool {
	return t == Triple{}
}

// Compare orders triples field by field (Arch, OS, Env). Within a field an
// absent part sorts before any present part, including a present empty string.
func Compare(a, b Triple) int {
	if c := a.Arch.compare(b.Arch); c != 0 {
		return c
	}
	if c := a.OS.compare(b.OS); c != 0 {
		return c
	}
	return a.Env.compare(b.Env)
}

// Less reports whether a sorts before b
func Less(a, b Triple) bool {
	return Compare(a, b) < 0
}

// MarshalText renders the canonical form so a triple can be a JSON or YAML field
func (t Triple) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText reads what MarshalText writes, using ParseKnown so that
// hyphenated OS families decode into the same triple.
func (t *Triple) UnmarshalText(text []byte) error {
	*t = ParseKnown(string(text))
	return nil
}
