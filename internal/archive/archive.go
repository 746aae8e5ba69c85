package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
)

// ErrUnsafePath is returned for archive entries that would land outside the destination
var ErrUnsafePath = errors.New("invalid path in archive")

// TarGz decodes gzip-compressed tar archives
type TarGz struct{}

// Decompress wraps r in a gzip decoder. The caller closes the result.
func (TarGz) Decompress(r io.Reader) (io.ReadCloser, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	return gz, nil
}

// Unpack extracts the tar stream r into dest, creating dest if needed
func (TarGz) Unpack(r io.Reader, dest string) error {
	dest, err := filepath.Abs(dest)
	if err != nil {
		return fmt.Errorf("resolving destination: %w", err)
	}
	if err := os.MkdirAll(dest, 0750); err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	tr := tar.NewReader(r)
	entries := 0

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar header: %w", err)
		}

		target, err := within(dest, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0750); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
		case tar.TypeReg:
			// #nosec G115 - tar header mode conversion is safe within this context
			if err := extractFile(tr, target, os.FileMode(uint32(header.Mode)).Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(header.Linkname) {
				return fmt.Errorf("%w: %s -> %s", ErrUnsafePath, header.Name, header.Linkname)
			}
			if _, err := within(dest, filepath.Join(filepath.Dir(header.Name), header.Linkname)); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("creating symlink: %w", err)
			}
		default:
			log.Debug().Str("name", header.Name).Msg("skipping unsupported tar entry")
			continue
		}
		entries++
	}

	log.Debug().Str("dest", dest).Int("entries", entries).Msg("archive unpacked")
	return nil
}

func within(dest, name string) (string, error) {
	target := filepath.Join(dest, name) // #nosec G305 - checked below
	if target != dest && !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

func extractFile(src io.Reader, dest string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	file, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode) // #nosec G304 - dest is checked by within
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, src); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(dest), err)
	}
	return nil
}
