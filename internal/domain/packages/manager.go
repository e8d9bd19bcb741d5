package packages

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/infrastructure/fetch"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webdesk/internal/shared/paths"
	"github.com/GriffinCanCode/webdesk/internal/shared/utils"
)

const (
	// HomePrefix marks a root inside the user's home directory.
	HomePrefix = paths.Home + ":/"
	// DefaultRoot is where user packages are installed.
	DefaultRoot = paths.DefaultPackageRoot
	// ManifestName is the manifest file written into a package root.
	ManifestName = "metadata.json"

	metadataPattern = "**/metadata.{json,yaml,yml,toml}"
)

// Fetcher downloads a package archive.
type Fetcher interface {
	Download(ctx context.Context, url string) (*fetch.Result, error)
}

// User is the identity a package operation runs as.
type User struct {
	Username string
	Groups   []string
}

// InstallOptions are the client supplied install options.
type InstallOptions struct {
	Root   string `json:"root,omitempty"`
	System bool   `json:"system,omitempty"`
	// Checksum is an optional "sha256:<hex>" digest of the archive.
	Checksum string `json:"checksum,omitempty"`
}

// InstallResult tells the client what to do after an install.
type InstallResult struct {
	Reload bool `json:"reload"`
}

// Package is a discovered package loaded at Init.
type Package struct {
	Dir      string
	Metadata Manifest
	Started  bool
}

// Options configures a Manager.
type Options struct {
	ManifestFile   string
	DiscoveredFile string
	// HomeRoot is the directory holding one home directory per user.
	HomeRoot        string
	Fetcher         Fetcher
	MaxExtractBytes int64
	Logger          *zap.Logger
	Metrics         *monitoring.Metrics
}

// Manager reads package manifests, installs user packages and tracks the
// packages discovered on the server.
type Manager struct {
	opts   Options
	logger *zap.Logger

	mu       sync.RWMutex
	packages []*Package
	started  bool

	// installMu guards installing and user manifest rewrites. It is never
	// held across a download or an extraction.
	installMu  sync.Mutex
	installing map[string]struct{}
}

// New creates a manager. Paths are used as given.
func New(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Manager{opts: opts, logger: opts.Logger, installing: make(map[string]struct{})}
}

// ManifestFile returns the system manifest path.
func (m *Manager) ManifestFile() string { return m.opts.ManifestFile }

// DiscoveredFile returns the discovered package list path.
func (m *Manager) DiscoveredFile() string { return m.opts.DiscoveredFile }

// Init loads every package named in the discovered list. Packages whose
// metadata cannot be read are logged and skipped.
func (m *Manager) Init(ctx context.Context) error {
	dirs, err := m.readDiscovered()
	if err != nil {
		return newError(KindInternal, "init", err)
	}

	loaded := make([]*Package, 0, len(dirs))
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return newError(KindInternal, "init", err)
		}

		meta, err := LoadMetadata(dir)
		if err != nil {
			m.logger.Warn("Skipping package", zap.String("dir", dir), zap.Error(err))
			continue
		}
		loaded = append(loaded, &Package{Dir: dir, Metadata: meta})
	}

	m.mu.Lock()
	m.packages = loaded
	m.mu.Unlock()

	m.opts.Metrics.SetPackagesLoaded(len(loaded))
	m.logger.Info("Packages loaded", zap.Int("count", len(loaded)), zap.String("discovered", m.opts.DiscoveredFile))
	return nil
}

// Start marks loaded packages as started.
func (m *Manager) Start(ctx context.Context) error {
	m.setStarted(true)
	return nil
}

// Destroy marks loaded packages as stopped. Safe to call more than once.
func (m *Manager) Destroy(ctx context.Context) error {
	m.setStarted(false)
	return nil
}

func (m *Manager) setStarted(started bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started == started {
		return
	}
	m.started = started
	for _, p := range m.packages {
		p.Started = started
	}
}

// Packages returns a snapshot of the loaded packages.
func (m *Manager) Packages() []Package {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Package, len(m.packages))
	for i, p := range m.packages {
		out[i] = *p
	}
	return out
}

func (m *Manager) readDiscovered() ([]string, error) {
	data, err := os.ReadFile(m.opts.DiscoveredFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var dirs []string
	if err := sonic.Unmarshal(data, &dirs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(m.opts.DiscoveredFile), err)
	}

	base := filepath.Dir(m.opts.DiscoveredFile)
	for i, dir := range dirs {
		if !filepath.IsAbs(dir) {
			dirs[i] = filepath.Join(base, dir)
		}
	}
	return dirs, nil
}

// ReadPackageManifests returns the system manifest followed by the user's
// own installed packages, filtered to what the user may see.
func (m *Manager) ReadPackageManifests(ctx context.Context, user User) ([]Manifest, error) {
	system, err := readManifestFile(m.opts.ManifestFile)
	if err != nil {
		m.opts.Metrics.RecordManifestRead("failure")
		return nil, newError(KindInternal, "read manifest", err)
	}

	var userEntries []Manifest
	if home, err := m.homeDir(user); err == nil {
		p := filepath.Join(home.Packages(), ManifestName)
		userEntries, err = readManifestFile(p)
		if err != nil {
			m.logger.Warn("Ignoring unreadable user manifest", zap.String("user", user.Username), zap.Error(err))
			userEntries = nil
		}
	}

	result := make([]Manifest, 0, len(system)+len(userEntries))
	for _, entry := range system {
		if entry == nil || !entry.VisibleTo(user.Groups) {
			continue
		}
		entry.sanitize()
		result = append(result, entry)
	}
	for _, entry := range userEntries {
		if entry == nil || !entry.VisibleTo(user.Groups) {
			continue
		}
		entry["_vfs"] = DefaultRoot
		entry["server"] = nil
		entry.sanitize()
		result = append(result, entry)
	}

	m.opts.Metrics.RecordManifestRead("success")
	return result, nil
}

// InstallPackage downloads the archive at rawURL and unpacks it into the
// user's package root.
func (m *Manager) InstallPackage(ctx context.Context, user User, rawURL string, opts InstallOptions) (result *InstallResult, err error) {
	started := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = string(KindOf(err))
		}
		m.opts.Metrics.RecordInstall(outcome, time.Since(started))
	}()

	const op = "install"

	u, err := utils.ValidateDownloadURL(rawURL)
	if err != nil {
		return nil, newError(KindInvalid, op, fmt.Errorf("%w: %v", ErrInvalidURL, err))
	}
	name, err := utils.PackageNameFromURL(u)
	if err != nil {
		return nil, newError(KindInvalid, op, fmt.Errorf("%w: %v", ErrInvalidURL, err))
	}

	root, err := m.resolveRoot(user, opts.Root)
	if err != nil {
		return nil, newError(KindInvalid, op, err)
	}
	target := filepath.Join(root, name)

	var checksum *utils.Checksum
	if opts.Checksum != "" {
		c, err := utils.ParseChecksum(opts.Checksum)
		if err != nil {
			return nil, newError(KindInvalid, op, err)
		}
		checksum = &c
	}

	if err := m.reserve(target); err != nil {
		kind := KindInternal
		if errors.Is(err, ErrTargetExists) {
			kind = KindConflict
		}
		return nil, newError(kind, op, err)
	}
	defer m.release(target)

	if opts.System {
		return nil, newError(KindUnsupported, op, ErrSystemInstall)
	}

	if m.opts.Fetcher == nil {
		return nil, newError(KindInternal, op, errors.New("no fetcher configured"))
	}

	log := m.logger.With(zap.String("user", user.Username), zap.String("package", name), zap.String("url", u.String()))
	log.Info("Installing package")

	download, err := m.opts.Fetcher.Download(ctx, u.String())
	if err != nil {
		return nil, newError(KindUpstream, op, err)
	}
	if checksum != nil && !checksum.Verify(download.Body) {
		return nil, newError(KindInvalid, op, fmt.Errorf("%w: checksum mismatch", ErrInvalidPackage))
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, newError(KindInternal, op, err)
	}

	files, err := extractArchive(ctx, download.Body, target, m.opts.MaxExtractBytes)
	if err != nil {
		os.RemoveAll(target)
		return nil, newError(KindInvalid, op, fmt.Errorf("%w: %v", ErrInvalidPackage, err))
	}

	if _, ok := findMetadata(target); !ok {
		os.RemoveAll(target)
		return nil, newError(KindInvalid, op, fmt.Errorf("%w: no metadata found", ErrInvalidPackage))
	}

	if err := m.writeUserManifest(root, target); err != nil {
		os.RemoveAll(target)
		return nil, newError(KindInternal, op, err)
	}

	log.Info("Package installed", zap.Int("files", files), zap.String("sha256", utils.HashHex(download.Body)))
	return &InstallResult{Reload: !opts.System}, nil
}

// reserve claims target for one install. It fails when the target exists
// on disk or another install holds it.
func (m *Manager) reserve(target string) error {
	m.installMu.Lock()
	defer m.installMu.Unlock()

	if _, busy := m.installing[target]; busy {
		return ErrTargetExists
	}
	if _, err := os.Stat(target); err == nil {
		return ErrTargetExists
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	m.installing[target] = struct{}{}
	return nil
}

func (m *Manager) release(target string) {
	m.installMu.Lock()
	delete(m.installing, target)
	m.installMu.Unlock()
}

// writeUserManifest rebuilds root/metadata.json from every package
// directory under root. Directories held by other installs than own are
// left out.
func (m *Manager) writeUserManifest(root, own string) error {
	m.installMu.Lock()
	defer m.installMu.Unlock()

	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}

	list := make([]Manifest, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if _, busy := m.installing[dir]; busy && dir != own {
			continue
		}
		meta, err := LoadMetadata(dir)
		if err != nil {
			m.logger.Warn("Skipping user package", zap.String("dir", e.Name()), zap.Error(err))
			continue
		}
		list = append(list, meta)
	}

	return writeJSONFile(filepath.Join(root, ManifestName), list)
}

func (m *Manager) homeDir(user User) (paths.HomeDir, error) {
	if err := utils.ValidateUsername(user.Username); err != nil {
		return paths.HomeDir{}, err
	}
	return paths.UserHome(m.opts.HomeRoot, user.Username)
}

// resolveRoot maps a "home:/..." root to a directory in the user's home.
func (m *Manager) resolveRoot(user User, root string) (string, error) {
	if root == "" {
		root = DefaultRoot
	}

	p, err := paths.Parse(root)
	if err != nil || p.Mount != paths.Home {
		return "", fmt.Errorf("%w: %q (only %s roots are allowed)", ErrInvalidRoot, root, HomePrefix)
	}
	if p.Rel == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidRoot, root)
	}

	home, err := m.homeDir(user)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	return home.Resolve(p)
}

// Discover walks roots for package metadata, then writes the discovered list
// and the system manifest. It returns the package directories found.
func (m *Manager) Discover(ctx context.Context, roots []string) ([]string, error) {
	const op = "discover"

	var (
		mu   sync.Mutex
		dirs []string
	)

	conf := fastwalk.Config{Follow: false}
	for _, root := range roots {
		root, err := filepath.Abs(root)
		if err != nil {
			return nil, newError(KindInvalid, op, err)
		}
		if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
			m.logger.Warn("Discovery root missing", zap.String("root", root))
			continue
		}

		err = fastwalk.Walk(&conf, root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if d.IsDir() {
				if name := d.Name(); name == "node_modules" || (strings.HasPrefix(name, ".") && p != root) {
					return fs.SkipDir
				}
				return nil
			}

			rel, err := filepath.Rel(root, p)
			if err != nil {
				return nil
			}
			if ok, _ := doublestar.PathMatch(filepath.FromSlash(metadataPattern), rel); ok {
				mu.Lock()
				dirs = append(dirs, filepath.Dir(p))
				mu.Unlock()
			}
			return nil
		})
		if err != nil {
			return nil, newError(KindInternal, op, err)
		}
	}

	slices.Sort(dirs)
	dirs = slices.Compact(dirs)

	manifest := make([]Manifest, 0, len(dirs))
	found := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		meta, err := LoadMetadata(dir)
		if err != nil {
			m.logger.Warn("Skipping package", zap.String("dir", dir), zap.Error(err))
			continue
		}
		manifest = append(manifest, meta)
		found = append(found, dir)
	}

	if err := writeJSONFile(m.opts.DiscoveredFile, found); err != nil {
		return nil, newError(KindInternal, op, err)
	}
	if err := writeJSONFile(m.opts.ManifestFile, manifest); err != nil {
		return nil, newError(KindInternal, op, err)
	}

	m.logger.Info("Discovery finished", zap.Int("packages", len(found)))
	return found, nil
}
