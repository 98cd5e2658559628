/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package serve runs a development server that rebuilds the bundle on
// source change and live-reloads connected browsers over WebSocket.
package serve

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"bennypowers.dev/cembundle/internal/platform"
)

// FileEvent describes a batch of source changes that occurred within a
// single debounce window.
type FileEvent struct {
	Paths     []string
	Timestamp time.Time
}

// Logger is the minimal logging surface FileWatcher and Server need;
// internal/logging.Logger satisfies it.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// FileWatcher watches a directory tree and emits a debounced FileEvent
// whenever one or more files under it change.
type FileWatcher struct {
	watcher        *fsnotify.Watcher
	events         chan FileEvent
	debounceWindow time.Duration
	debouncedFiles map[string]time.Time
	debounceGen    int
	clock          platform.TimeProvider
	mu             sync.Mutex
	logger         Logger
	done           chan struct{}
}

// NewFileWatcher creates a file watcher with the given debounce window.
func NewFileWatcher(debounceWindow time.Duration, logger Logger) (*FileWatcher, error) {
	return newFileWatcher(debounceWindow, logger, platform.NewRealTimeProvider())
}

// newFileWatcher is the internal constructor taking an explicit clock, so
// tests can substitute a fake TimeProvider instead of sleeping in real time.
func newFileWatcher(debounceWindow time.Duration, logger Logger, clock platform.TimeProvider) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher:        watcher,
		events:         make(chan FileEvent, 100),
		debounceWindow: debounceWindow,
		debouncedFiles: make(map[string]time.Time),
		clock:          clock,
		logger:         logger,
		done:           make(chan struct{}),
	}

	go fw.processEvents()

	return fw, nil
}

// Watch adds root and all its subdirectories (skipping ignored ones) to
// the watch set.
func (fw *FileWatcher) Watch(root string) error {
	if err := fw.watcher.Add(root); err != nil {
		return err
	}

	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if p == root {
			return nil
		}
		if shouldIgnore(p) {
			return filepath.SkipDir
		}
		return fw.watcher.Add(p)
	})
}

// Events returns the channel of debounced file-change batches.
func (fw *FileWatcher) Events() <-chan FileEvent {
	return fw.events
}

// Close stops the watcher and its event-processing goroutine.
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	fw.debounceGen++ // invalidate any in-flight debounce goroutine
	fw.mu.Unlock()

	var err error
	if fw.watcher != nil {
		err = fw.watcher.Close()
	}

	close(fw.done)
	fw.clock.Sleep(10 * time.Millisecond)
	close(fw.events)

	return err
}

func (fw *FileWatcher) processEvents() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if shouldIgnore(event.Name) {
				continue
			}

			fw.mu.Lock()
			fw.debouncedFiles[event.Name] = fw.clock.Now()
			fw.debounceGen++
			gen := fw.debounceGen
			fw.mu.Unlock()
			go fw.scheduleFlush(gen)

			if fw.logger != nil {
				fw.logger.Debug("file changed: %s", event.Name)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			if fw.logger != nil {
				fw.logger.Error("file watcher error: %v", err)
			}

		case <-fw.done:
			return
		}
	}
}

// scheduleFlush waits one debounce window on fw.clock and then flushes,
// unless a later change has bumped the generation counter past gen in the
// meantime (i.e. this goroutine lost the debounce race to a newer change).
func (fw *FileWatcher) scheduleFlush(gen int) {
	<-fw.clock.After(fw.debounceWindow)

	fw.mu.Lock()
	current := fw.debounceGen
	fw.mu.Unlock()
	if current != gen {
		return
	}
	fw.flushDebouncedEvents()
}

func (fw *FileWatcher) flushDebouncedEvents() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	select {
	case <-fw.done:
		return
	default:
	}

	if len(fw.debouncedFiles) == 0 {
		return
	}

	files := make([]string, 0, len(fw.debouncedFiles))
	for file := range fw.debouncedFiles {
		files = append(files, file)
	}
	fw.debouncedFiles = make(map[string]time.Time)

	event := FileEvent{Paths: files, Timestamp: fw.clock.Now()}
	select {
	case fw.events <- event:
	case <-fw.done:
	default:
		if fw.logger != nil {
			fw.logger.Debug("dropped file event: channel full")
		}
	}

	if fw.logger != nil {
		fw.logger.Info("source changes detected: %d files", len(files))
	}
}

var ignoredDirs = []string{".git", "node_modules", "dist", "build", ".cache"}

func shouldIgnore(path string) bool {
	base := filepath.Base(path)

	for _, dir := range ignoredDirs {
		if base == dir {
			return true
		}
	}
	if strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swo") || strings.HasSuffix(base, ".swn") {
		return true
	}
	if strings.HasSuffix(base, "~") {
		return true
	}
	if strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	if strings.HasPrefix(base, ".#") {
		return true
	}
	return false
}
