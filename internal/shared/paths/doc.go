// Package paths maps virtual desktop paths to host directories.
//
// Clients name locations as "<mount>:/<path>". Only the home mount is
// backed by the server: every user owns a directory below the configured
// home root.
//
// # Directory Structure
//
//	<home root>/
//	  └── <username>/
//	      └── .packages/      (user-installed packages)
//	          ├── metadata.json
//	          └── <package>/
//
// # Usage
//
//	home, err := paths.UserHome(cfg.Paths.Home, "alice")
//	p, err := paths.Parse("home:/.packages")
//	dir, err := home.Resolve(p) // <home root>/alice/.packages
package paths
