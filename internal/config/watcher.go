/*-------------------------------------------------------------------------
 *
 * pgEdge PostGIS Schema Manager
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

var watchLog = log.New(os.Stderr, "[WATCH] ", log.LstdFlags)

// FileWatcher watches one file (a schema definition or the configuration
// itself) and invokes a reload callback when it changes.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	reload   func() error
	debounce time.Duration
	done     chan struct{}
}

// NewFileWatcher creates a watcher for the given file. The containing
// directory is watched rather than the file, since editors commonly
// replace files on save, which drops the inode-level watch.
func NewFileWatcher(path string, reload func() error) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", filepath.Dir(path), err)
	}

	return &FileWatcher{
		watcher:  watcher,
		path:     path,
		reload:   reload,
		debounce: 100 * time.Millisecond,
		done:     make(chan struct{}),
	}, nil
}

// Start begins delivering change events in the background.
func (fw *FileWatcher) Start() {
	go fw.run()
}

// Stop ends the watch and releases the underlying notifier.
func (fw *FileWatcher) Stop() {
	close(fw.done)
	fw.watcher.Close()
}

func (fw *FileWatcher) run() {
	// Editors fire several write/create events per save; coalesce them
	// so the reload runs once per burst
	var pending *time.Timer

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(fw.debounce, func() {
				if err := fw.reload(); err != nil {
					watchLog.Printf("Reload of %s failed: %v", fw.path, err)
					return
				}
				watchLog.Printf("Reloaded %s", fw.path)
			})

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			watchLog.Printf("Watch error for %s: %v", fw.path, err)

		case <-fw.done:
			if pending != nil {
				pending.Stop()
			}
			return
		}
	}
}
