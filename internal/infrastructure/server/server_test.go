package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webdesk/internal/core"
	"github.com/GriffinCanCode/webdesk/internal/domain/packages"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.Server.ShutdownTimeout = time.Second
	cfg.Logging.Level = "error"
	cfg.Paths.Root = t.TempDir()
	return cfg
}

func TestRunServesAndShutsDown(t *testing.T) {
	srv, err := NewServer(testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- srv.Run(ctx) }()

	require.Eventually(t, func() bool { return srv.Addr() != "" }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.True(t, srv.Core().Has(core.CapabilityHTTP))
	manager, err := core.Make[*packages.Manager](srv.Core(), core.CapabilityPackages)
	require.NoError(t, err)
	assert.NotNil(t, manager)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.NoError(t, srv.Close())
}

func TestDiscover(t *testing.T) {
	cfg := testConfig(t)
	pkgDir := filepath.Join(cfg.Paths.Root, "src", "packages", "Editor")
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "metadata.json"), []byte(`{"name":"Editor"}`), 0o644))

	srv, err := NewServer(cfg)
	require.NoError(t, err)

	found, err := srv.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{pkgDir}, found)

	assert.FileExists(t, filepath.Join(cfg.Paths.Root, "dist", "metadata.json"))
	assert.FileExists(t, filepath.Join(cfg.Paths.Root, "packages.json"))
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/srv/dist", resolvePath("/srv", "dist"))
	assert.Equal(t, "/opt/dist", resolvePath("/srv", "/opt/dist"))
}
