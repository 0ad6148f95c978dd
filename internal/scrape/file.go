package scrape

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spiffcs/slaclock/internal/constants"
	"github.com/spiffcs/slaclock/internal/log"
	"github.com/spiffcs/slaclock/internal/model"
)

// File reads ticket records from a JSON dump of the mailbox state: either an
// array of records or an object keyed by id.
type File struct {
	path     string
	debounce time.Duration
	refresh  chan struct{}
}

// NewFile returns a source reading path.
func NewFile(path string) *File {
	return &File{
		path:     filepath.Clean(path),
		debounce: constants.ScrapeDebounce,
		refresh:  make(chan struct{}, 1),
	}
}

// Refresh asks a running Watch to read the file again.
func (f *File) Refresh() {
	select {
	case f.refresh <- struct{}{}:
	default:
	}
}

// Scrape reads and decodes the file. An unreadable file is an error; a
// malformed document is reported as a Failure.
func (f *File) Scrape(ctx context.Context) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	records, recordErrs, err := model.DecodeRecords(data)
	if err != nil {
		return Failure{Err: fmt.Errorf("%s: %w", f.path, err)}, nil
	}

	log.Debug("read ticket dump", "file", f.path, "records", len(records), "invalid", len(recordErrs))
	return Batch{
		Records: records,
		Errors:  recordErrs,
		Title:   strings.TrimSuffix(filepath.Base(f.path), filepath.Ext(f.path)),
	}, nil
}

// Watch sends the current contents, then re-reads the file whenever it is
// written.
func (f *File) Watch(ctx context.Context, out chan<- Outcome) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", f.path, err)
	}

	if !f.emit(ctx, out) {
		return nil
	}

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			fire = time.After(f.debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("ticket dump watcher error", "error", err)
		case <-f.refresh:
			if !f.emit(ctx, out) {
				return nil
			}
		case <-fire:
			fire = nil
			if !f.emit(ctx, out) {
				return nil
			}
		}
	}
}

func (f *File) emit(ctx context.Context, out chan<- Outcome) bool {
	o, err := f.Scrape(ctx)
	if err != nil {
		o = Failure{Err: err}
	}
	return send(ctx, out, o)
}
