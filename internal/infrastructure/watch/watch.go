package watch

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Handle is an active watch. Close releases it.
type Handle struct {
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// File watches a single file. The parent directory is watched so the watch
// survives editors that replace the file on save. onChange runs on the
// watcher goroutine for every write or create of the file.
func File(path string, logger *zap.Logger, onChange func(fsnotify.Event)) (*Handle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	h := &Handle{path: abs, watcher: w, done: make(chan struct{})}
	go h.loop(logger, onChange)

	logger.Debug("Watching file", zap.String("path", abs))
	return h, nil
}

// Path returns the watched file.
func (h *Handle) Path() string {
	return h.path
}

func (h *Handle) loop(logger *zap.Logger, onChange func(fsnotify.Event)) {
	defer close(h.done)

	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != h.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				onChange(event)
			}
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch error", zap.String("path", h.path), zap.Error(err))
		}
	}
}

// Close stops the watch and waits for the event loop to exit. Further calls
// return the first result.
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		h.closeErr = h.watcher.Close()
		<-h.done
	})
	return h.closeErr
}

// CloseAll closes every handle and joins the errors.
func CloseAll(handles []*Handle) error {
	var errs []error
	for _, h := range handles {
		if err := h.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
