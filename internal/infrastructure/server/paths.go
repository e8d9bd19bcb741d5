package server

import "path/filepath"

// resolvePath anchors a relative path at root.
func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
