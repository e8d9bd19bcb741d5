package paths

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Mount points
const (
	// Home is the per-user mount ("home:/...").
	Home = "home"
)

// Well-known locations inside a home directory
const (
	// PackagesDir holds user-installed packages
	PackagesDir = ".packages"

	// DefaultPackageRoot is the VFS form of PackagesDir
	DefaultPackageRoot = Home + ":/" + PackagesDir
)

// Path is a parsed "<mount>:/<rel>" virtual path.
type Path struct {
	Mount string
	// Rel is slash separated, cleaned, and never escapes the mount.
	Rel string
}

// Parse splits a virtual path into mount and relative part.
func Parse(vfs string) (Path, error) {
	mount, rest, ok := strings.Cut(vfs, ":/")
	if !ok || mount == "" || strings.ContainsAny(mount, `/\`) {
		return Path{}, fmt.Errorf("%q is not a mount path", vfs)
	}

	rel := strings.Trim(filepath.ToSlash(filepath.Clean("/"+rest)), "/")
	if rel != "" && !filepath.IsLocal(filepath.FromSlash(rel)) {
		return Path{}, fmt.Errorf("%q escapes its mount", vfs)
	}
	if slices.Contains(strings.Split(filepath.ToSlash(rest), "/"), "..") {
		return Path{}, fmt.Errorf("%q contains parent references", vfs)
	}

	return Path{Mount: mount, Rel: rel}, nil
}

func (p Path) String() string {
	return p.Mount + ":/" + p.Rel
}

// HomeDir locates one user's home directory under a shared root.
type HomeDir struct {
	Root     string
	Username string
}

// UserHome returns the home directory of username under root.
func UserHome(root, username string) (HomeDir, error) {
	if root == "" {
		return HomeDir{}, fmt.Errorf("home root is not configured")
	}
	if err := ValidateSegment(username); err != nil {
		return HomeDir{}, fmt.Errorf("username: %w", err)
	}
	return HomeDir{Root: root, Username: username}, nil
}

// Dir returns the host directory of the home.
func (h HomeDir) Dir() string {
	return filepath.Join(h.Root, h.Username)
}

// Packages returns the host directory of the user's installed packages.
func (h HomeDir) Packages() string {
	return filepath.Join(h.Dir(), PackagesDir)
}

// Resolve maps a home path to a host directory.
func (h HomeDir) Resolve(p Path) (string, error) {
	if p.Mount != Home {
		return "", fmt.Errorf("mount %q is not %s", p.Mount, Home)
	}
	return filepath.Join(h.Dir(), filepath.FromSlash(p.Rel)), nil
}

// ValidateSegment checks that name is usable as one path element
func ValidateSegment(name string) error {
	if name == "" {
		return fmt.Errorf("cannot be empty")
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("cannot be an absolute path")
	}
	if filepath.Clean(name) != name || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("contains invalid path components")
	}
	return nil
}
