// Package packages provides the core/packages capability.
//
// The provider depends on core/http. During Init it binds two authenticated
// routes:
//
//	GET  /api/packages/manifest  system and user package manifests
//	POST /api/packages/install   {"url": ..., "options": {...}}
//
// Any failure answers 400 with {"error": message}. In development mode the
// manifest file is watched and every change broadcasts
// packages:metadata:changed.
package packages
