package install

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/werdl/get-rust/internal/triple"
)

const (
	// DefaultBaseURL is where the prebuilt toolchain archives are published
	DefaultBaseURL = "https://static.rust-lang.org/dist"

	// DefaultVersion is installed when no version is configured
	DefaultVersion = "1.76.0"

	// InstallerName is the script bundled at the root of every archive
	InstallerName = "install.sh"

	// nameTemplate names both the archive and the directory it is unpacked into.
	nameTemplate = "rust-%s-%s"

	// locatorTemplate is <base>/<name>.tar.gz
	locatorTemplate = "%s/%s.tar.gz"

	// InstallerLayout is the installer's location relative to the work dir.
	// The archive is unpacked into a directory named after itself, and the
	// archive in turn contains a single directory with that same name, so
	// the name appears twice. A change to the upstream packaging breaks
	// the install step here first.
	InstallerLayout = "%[1]s/%[1]s/" + InstallerName
)

// Request pairs a target with a toolchain version for one run
type Request struct {
	Target  triple.Triple
	Version string
}

// Name is rust-<version>-<triple>
func (r Request) Name() string {
	return fmt.Sprintf(nameTemplate, r.Version, r.Target)
}

// URL is the archive locator under base
func (r Request) URL(base string) string {
	return fmt.Sprintf(locatorTemplate, strings.TrimSuffix(base, "/"), r.Name())
}

// Dir is the extraction directory under workDir
func (r Request) Dir(workDir string) string {
	return filepath.Join(workDir, r.Name())
}

// InstallerPath is the bundled installer inside the extraction directory
func (r Request) InstallerPath(workDir string) string {
	return filepath.Join(workDir, filepath.FromSlash(fmt.Sprintf(InstallerLayout, r.Name())))
}
