package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spiffcs/slaclock/internal/constants"
	"github.com/spiffcs/slaclock/internal/log"
)

// Watcher reloads the merged configuration whenever one of the config files
// changes on disk.
type Watcher struct {
	watcher    *fsnotify.Watcher
	globalPath string
	localPath  string
	debounce   time.Duration
	updates    chan *Config
}

// NewWatcher watches the default global and local config files.
func NewWatcher() (*Watcher, error) {
	local, err := filepath.Abs(LocalConfigPath())
	if err != nil {
		local = LocalConfigPath()
	}
	return NewWatcherFor(ConfigPath(), local)
}

// NewWatcherFor watches the given global and local config files. The parent
// directories are watched so that editors replacing a file are noticed.
func NewWatcherFor(globalPath, localPath string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		watcher:    fw,
		globalPath: filepath.Clean(globalPath),
		localPath:  filepath.Clean(localPath),
		debounce:   constants.ConfigReloadDebounce,
		updates:    make(chan *Config, 1),
	}

	added := 0
	seen := map[string]bool{}
	for _, p := range []string{w.globalPath, w.localPath} {
		dir := filepath.Dir(p)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if _, err := os.Stat(dir); err != nil {
			log.Debug("config directory not present, not watching", "dir", dir)
			continue
		}
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		added++
	}
	if added == 0 {
		log.Debug("no config directory to watch")
	}

	return w, nil
}

// Updates delivers the reloaded configuration after each change.
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Run processes file events until ctx is done. It closes the Updates
// channel on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.updates)
	defer w.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			log.Trace("config file event", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", "error", err)

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	name := filepath.Clean(event.Name)
	return name == w.globalPath || name == w.localPath
}

func (w *Watcher) reload() {
	cfg, err := LoadFrom(w.globalPath, w.localPath)
	if err != nil {
		log.Warn("ignoring config change", "error", err)
		return
	}
	log.Debug("config reloaded")

	// Keep only the newest config if the consumer is behind.
	select {
	case <-w.updates:
	default:
	}
	w.updates <- cfg
}
