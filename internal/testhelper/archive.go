package testhelper

import (
	"archive/tar"
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

// Entry is one member of a test archive. Entries with a trailing slash in
// Name are written as directories.
type Entry struct {
	Name     string
	Body     string
	Mode     int64
	Linkname string
}

// TarGz builds a gzip-compressed tar archive in memory
func TarGz(t *testing.T, entries ...Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, Mode: e.Mode}
		switch {
		case e.Linkname != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Linkname
		case len(e.Name) > 0 && e.Name[len(e.Name)-1] == '/':
			hdr.Typeflag = tar.TypeDir
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.Body))
		}
		if hdr.Mode == 0 {
			hdr.Mode = 0644
			if hdr.Typeflag == tar.TypeDir {
				hdr.Mode = 0755
			}
		}

		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.Body))
			require.NoError(t, err)
		}
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// RustArchive builds an archive laid out like the official dist tarballs:
// a single self-named top-level directory holding install.sh.
func RustArchive(t *testing.T, name, script string) []byte {
	t.Helper()

	return TarGz(t,
		Entry{Name: name + "/"},
		Entry{Name: name + "/install.sh", Body: script, Mode: 0755},
		Entry{Name: name + "/version", Body: name + "\n"},
		Entry{Name: name + "/components", Body: "rustc\ncargo\n"},
	)
}
