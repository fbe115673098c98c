package templates

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultWatchDebounce = 200 * time.Millisecond

// Watch follows changes under the source directory until ctx is done. Each
// changed template has its cached markup dropped and onChange called with
// its id. A manifest change reloads metadata and reports an empty id.
func (s *DirSource) Watch(ctx context.Context, onChange func(id string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", s.dir, err)
	}
	for _, e := range entries {
		if e.IsDir() && ValidID(e.Name()) {
			if err := watcher.Add(filepath.Join(s.dir, e.Name())); err != nil {
				log.Printf("[TEMPLATES] Not watching %s: %v", e.Name(), err)
			}
		}
	}
	log.Printf("[TEMPLATES] Watching %s", s.dir)

	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
	)
	defer func() {
		mu.Lock()
		for _, t := range pending {
			t.Stop()
		}
		mu.Unlock()
	}()

	// Editors write files in bursts; report each template once per burst.
	schedule := func(id string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := pending[id]; ok {
			t.Reset(defaultWatchDebounce)
			return
		}
		pending[id] = time.AfterFunc(defaultWatchDebounce, func() {
			mu.Lock()
			delete(pending, id)
			mu.Unlock()
			if ctx.Err() != nil {
				return
			}
			if id == "" {
				s.reloadManifest()
			}
			s.forget(id)
			if onChange != nil {
				onChange(id)
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[TEMPLATES] Watch error: %v", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			rel, err := filepath.Rel(s.dir, ev.Name)
			if err != nil || strings.HasPrefix(rel, "..") {
				continue
			}
			parts := strings.Split(filepath.ToSlash(rel), "/")
			switch {
			case len(parts) == 1 && parts[0] == ManifestFile:
				schedule("")
			case len(parts) == 1 && ValidID(parts[0]):
				// New template directory: watch it too.
				if ev.Has(fsnotify.Create) {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						_ = watcher.Add(ev.Name)
					}
				}
				schedule(parts[0])
			case len(parts) >= 2 && ValidID(parts[0]):
				schedule(parts[0])
			}
		}
	}
}
