package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Path
		wantErr bool
	}{
		{in: "home:/.packages", want: Path{Mount: "home", Rel: ".packages"}},
		{in: "home:/apps/", want: Path{Mount: "home", Rel: "apps"}},
		{in: "home:/", want: Path{Mount: "home", Rel: ""}},
		{in: "osjs:/packages", want: Path{Mount: "osjs", Rel: "packages"}},
		{in: "home:/a..b", want: Path{Mount: "home", Rel: "a..b"}},
		{in: "home:/../bob", wantErr: true},
		{in: "home:/a/../../b", wantErr: true},
		{in: "/etc/passwd", wantErr: true},
		{in: ":/x", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathString(t *testing.T) {
	p, err := Parse(DefaultPackageRoot)
	require.NoError(t, err)
	assert.Equal(t, DefaultPackageRoot, p.String())
}

func TestUserHome(t *testing.T) {
	home, err := UserHome("/srv/home", "alice")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/home", "alice"), home.Dir())
	assert.Equal(t, filepath.Join("/srv/home", "alice", ".packages"), home.Packages())

	p, err := Parse("home:/apps/x")
	require.NoError(t, err)
	dir, err := home.Resolve(p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/home", "alice", "apps", "x"), dir)

	_, err = home.Resolve(Path{Mount: "osjs", Rel: "x"})
	assert.Error(t, err)

	_, err = UserHome("", "alice")
	assert.Error(t, err)
	_, err = UserHome("/srv/home", "../root")
	assert.Error(t, err)
}

func TestValidateSegment(t *testing.T) {
	assert.NoError(t, ValidateSegment("alice"))
	for _, bad := range []string{"", ".", "..", "a/b", "/abs", `a\b`} {
		assert.Error(t, ValidateSegment(bad), bad)
	}
}
