package packages

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractArchiveFormats(t *testing.T) {
	raw := buildTar(t, []archiveEntry{
		{name: "package/", dir: true},
		{name: "package/metadata.json", body: `{"name":"Demo"}`},
		{name: "package/dist/main.js", body: "console.log(1)"},
	})

	cases := map[string][]byte{
		"tar":     raw,
		"tar.gz":  gzipBytes(t, raw),
		"tar.zst": zstdBytes(t, raw),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			dest := t.TempDir()

			files, err := extractArchive(context.Background(), data, dest, 0)
			require.NoError(t, err)
			assert.Equal(t, 2, files)

			assert.FileExists(t, filepath.Join(dest, "metadata.json"))
			assert.FileExists(t, filepath.Join(dest, "dist", "main.js"))
		})
	}
}

func TestExtractArchiveFlatLayout(t *testing.T) {
	data := buildTar(t, []archiveEntry{
		{name: "metadata.json", body: `{"name":"Flat"}`},
		{name: "main.js", body: "x"},
	})
	dest := t.TempDir()

	_, err := extractArchive(context.Background(), data, dest, 0)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dest, "metadata.json"))
}

func TestExtractArchiveSkipsTraversal(t *testing.T) {
	data := buildTar(t, []archiveEntry{
		{name: "metadata.json", body: `{}`},
		{name: "../escape.txt", body: "nope"},
	})
	parent := t.TempDir()
	dest := filepath.Join(parent, "pkg")
	require.NoError(t, os.Mkdir(dest, 0o755))

	_, err := extractArchive(context.Background(), data, dest, 0)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(parent, "escape.txt"))
}

func TestExtractArchiveLimit(t *testing.T) {
	data := buildTar(t, []archiveEntry{
		{name: "metadata.json", body: `{"name":"big"}`},
		{name: "blob.bin", body: string(make([]byte, 1024))},
	})

	_, err := extractArchive(context.Background(), data, t.TempDir(), 100)
	assert.ErrorIs(t, err, errExtractTooLarge)
}

func TestExtractArchiveRejectsGarbage(t *testing.T) {
	_, err := extractArchive(context.Background(), []byte("definitely not an archive"), t.TempDir(), 0)
	assert.Error(t, err)
}
