package utils

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid", "alice_01", false},
		{"too short", "al", true},
		{"empty", "", true},
		{"invalid chars", "alice!", true},
		{"too long", strings.Repeat("a", MaxUsernameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("secret123"))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword("nul\x00bytes!"))
}

func TestValidateDownloadURL(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"https://example.com/pkg.tgz", false},
		{"http://example.com/a/b/pkg.tar.gz?x=1", false},
		{"ftp://example.com/pkg.tgz", true},
		{"file:///etc/passwd", true},
		{"/relative/pkg.tgz", true},
		{"", true},
		{"http://", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := ValidateDownloadURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPackageNameFromURL(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"https://example.com/dl/my-app.tgz", "my-app", false},
		{"https://example.com/dl/my-app.tar.gz?token=1", "my-app", false},
		{"https://example.com/dl/Calculator", "Calculator", false},
		{"https://example.com/", "", true},
		{"https://example.com/dl/..", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			require.NoError(t, err)

			got, err := PackageNameFromURL(u)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChecksum(t *testing.T) {
	data := []byte("package archive")
	digest := HashHex(data)

	sum, err := ParseChecksum("sha256:" + digest)
	require.NoError(t, err)
	assert.True(t, sum.Verify(data))
	assert.False(t, sum.Verify([]byte("tampered")))

	bare, err := ParseChecksum(digest)
	require.NoError(t, err)
	assert.True(t, bare.Verify(data))

	_, err = ParseChecksum("md5:abcd")
	assert.Error(t, err)
	_, err = ParseChecksum("sha256:zz")
	assert.Error(t, err)
}
