// Package watch wraps fsnotify for single-file change notifications.
package watch
