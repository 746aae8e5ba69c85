// Package channel turns the version a user asks for into the version
// string used in archive names.
//
// Concrete versions (1.76.0, 1.76) are normalized locally. Release channel
// names (stable, beta, nightly) are looked up in the channel manifest that
// is published next to the archives; lookups are cached on disk.
package channel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

const (
	Stable  = "stable"
	Beta    = "beta"
	Nightly = "nightly"

	manifestTemplate = "%s/channel-rust-%s.toml"
	cacheExpiry      = 2 * time.Hour
)

var ErrInvalidVersion = errors.New("invalid version")

// Downloader fetches a URL into w
type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) error
}

// Resolution is the outcome of resolving a requested version
type Resolution struct {
	// Requested is the version as given
	Requested string `json:"requested" yaml:"requested"`
	// Version goes into the archive name: a semver for stable and concrete
	// versions, the channel name for beta and nightly.
	Version string `json:"version" yaml:"version"`
	// Release is the full release string from the manifest, if one was read
	Release string `json:"release,omitempty" yaml:"release,omitempty"`
	// Date is the manifest date, if one was read
	Date string `json:"date,omitempty" yaml:"date,omitempty"`
}

// Resolver resolves versions against a dist server
type Resolver struct {
	BaseURL    string
	Downloader Downloader
	Cache      *Cache
}

// IsChannel reports whether v names a release channel
func IsChannel(v string) bool {
	switch v {
	case Stable, Beta, Nightly:
		return true
	}
	return false
}

// Resolve maps v to the version used in archive names
func (r *Resolver) Resolve(ctx context.Context, v string) (Resolution, error) {
	v = strings.TrimSpace(v)
	if !IsChannel(v) {
		normalized, err := Normalize(v)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Requested: v, Version: normalized}, nil
	}

	key := Key(r.BaseURL, v)
	if entry, ok := r.Cache.Get(key); ok {
		log.Debug().Str("channel", v).Str("release", entry.Release).Msg("using cached channel manifest")
		return resolution(v, entry)
	}

	entry, err := r.fetch(ctx, v)
	if err != nil {
		return Resolution{}, err
	}
	if err := r.Cache.Set(key, entry); err != nil {
		log.Debug().Err(err).Msg("failed to cache channel manifest")
	}
	return resolution(v, entry)
}

// Normalize validates a concrete version and renders it as major.minor.patch
func Normalize(v string) (string, error) {
	sv, err := semver.NewVersion(strings.TrimPrefix(v, "v"))
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidVersion, v, err)
	}
	if sv.Metadata() != "" {
		return "", fmt.Errorf("%w %q: build metadata is not published", ErrInvalidVersion, v)
	}
	return sv.String(), nil
}

type manifest struct {
	Date string `toml:"date"`
	Pkg  map[string]struct {
		Version string `toml:"version"`
	} `toml:"pkg"`
}

func (r *Resolver) fetch(ctx context.Context, name string) (Entry, error) {
	url := fmt.Sprintf(manifestTemplate, strings.TrimSuffix(r.BaseURL, "/"), name)

	var buf bytes.Buffer
	if err := r.Downloader.Download(ctx, url, &buf); err != nil {
		return Entry{}, fmt.Errorf("fetching %s manifest: %w", name, err)
	}

	var m manifest
	if err := toml.Unmarshal(buf.Bytes(), &m); err != nil {
		return Entry{}, fmt.Errorf("decoding %s manifest: %w", name, err)
	}

	rust, ok := m.Pkg["rust"]
	if !ok || rust.Version == "" {
		return Entry{}, fmt.Errorf("%s manifest has no rust package", name)
	}

	return Entry{LastChecked: time.Now(), Release: rust.Version, Date: m.Date}, nil
}

func resolution(name string, e Entry) (Resolution, error) {
	res := Resolution{Requested: name, Version: name, Release: e.Release, Date: e.Date}
	if name != Stable {
		return res, nil
	}

	// "1.76.0 (07dca489a 2024-02-04)"
	fields := strings.Fields(e.Release)
	if len(fields) == 0 {
		return Resolution{}, fmt.Errorf("%w: empty stable release", ErrInvalidVersion)
	}
	v, err := Normalize(fields[0])
	if err != nil {
		return Resolution{}, err
	}
	res.Version = v
	return res, nil
}
