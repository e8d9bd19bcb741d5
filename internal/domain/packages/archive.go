package packages

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// DefaultMaxExtractBytes caps the unpacked size of one package.
const DefaultMaxExtractBytes int64 = 256 << 20

var errExtractTooLarge = errors.New("archive exceeds extraction limit")

// archiveReader opens a tar stream over data, decompressing gzip or zstd as
// detected from the content.
func archiveReader(data []byte) (*tar.Reader, func(), error) {
	mtype := mimetype.Detect(data)

	switch {
	case mtype.Is("application/gzip"):
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return tar.NewReader(gz), func() { gz.Close() }, nil
	case mtype.Is("application/zstd"):
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return tar.NewReader(zr), zr.Close, nil
	default:
		return tar.NewReader(bytes.NewReader(data)), func() {}, nil
	}
}

// archiveRoot returns the single top-level directory shared by every entry,
// or "" when entries sit at the archive root.
func archiveRoot(data []byte) (string, error) {
	tr, closeFn, err := archiveReader(data)
	if err != nil {
		return "", err
	}
	defer closeFn()

	root := ""
	entries := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read archive: %w", err)
		}

		name := strings.TrimPrefix(path.Clean("/"+hdr.Name), "/")
		if name == "" {
			continue
		}
		entries++

		first, _, nested := strings.Cut(name, "/")
		if !nested && hdr.Typeflag != tar.TypeDir {
			return "", nil
		}
		if root == "" {
			root = first
		} else if root != first {
			return "", nil
		}
	}

	if entries == 0 {
		return "", errors.New("archive is empty")
	}
	return root, nil
}

// extractArchive unpacks a tar, tar.gz or tar.zst archive into dest. A
// single top-level directory is stripped. Entries that would land outside
// dest, links and device files are skipped. It returns the number of files
// written.
func extractArchive(ctx context.Context, data []byte, dest string, limit int64) (int, error) {
	if limit <= 0 {
		limit = DefaultMaxExtractBytes
	}

	strip, err := archiveRoot(data)
	if err != nil {
		return 0, err
	}

	tr, closeFn, err := archiveReader(data)
	if err != nil {
		return 0, err
	}
	defer closeFn()

	cleanDest := filepath.Clean(dest)
	files := 0
	var written int64

	for {
		if err := ctx.Err(); err != nil {
			return files, err
		}

		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return files, fmt.Errorf("read archive: %w", err)
		}

		name := strings.TrimPrefix(path.Clean("/"+hdr.Name), "/")
		if strip != "" {
			name = strings.TrimPrefix(strings.TrimPrefix(name, strip), "/")
		}
		if name == "" {
			continue
		}

		target := filepath.Join(cleanDest, filepath.FromSlash(name))
		if !strings.HasPrefix(target, cleanDest+string(os.PathSeparator)) {
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return files, err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return files, err
			}
			n, err := writeEntry(target, tr, limit-written)
			written += n
			if err != nil {
				return files, err
			}
			files++
		}
	}

	return files, nil
}

func writeEntry(target string, r io.Reader, remaining int64) (int64, error) {
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, io.LimitReader(r, remaining+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > remaining {
		err = errExtractTooLarge
	}
	return n, err
}
