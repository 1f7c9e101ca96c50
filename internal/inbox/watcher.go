package inbox

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/starsys/internal/apperr"
	"github.com/starford/starsys/internal/repository"
)

// DefaultDebounce is how long a file must stay quiet before it is imported.
const DefaultDebounce = 200 * time.Millisecond

// Importer saves the systems found in a CSV stream.
type Importer interface {
	Import(ctx context.Context, r io.Reader) (repository.BatchResult, error)
}

// Result describes one processed inbox file.
type Result struct {
	Name    string
	MovedTo string
	Batch   repository.BatchResult
	Err     error
}

// ResultCallback is called after each processed file.
type ResultCallback func(Result)

// Watcher imports CSV files dropped into the inbox.
type Watcher struct {
	fs       *FS
	importer Importer
	logger   *slog.Logger
	debounce time.Duration
	cb       ResultCallback
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithCallback registers cb for every processed file.
func WithCallback(cb ResultCallback) WatcherOption {
	return func(w *Watcher) { w.cb = cb }
}

// WithWatcherLogger sets the watcher logger.
func WithWatcherLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher creates a watcher for fs feeding importer.
func NewWatcher(fs *FS, importer Importer, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		fs:       fs,
		importer: importer,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Scan imports every CSV file currently in the inbox.
func (w *Watcher) Scan(ctx context.Context) []Result {
	entries, err := w.fs.List()
	if err != nil {
		w.logger.Warn("inbox: scan failed", slog.String("error", err.Error()))
		return nil
	}
	out := make([]Result, 0, len(entries))
	for _, e := range entries {
		out = append(out, w.Process(ctx, e.Name))
	}
	return out
}

// Process imports one inbox file and moves it to imported/ on success or
// failed/ when its content is rejected. Storage failures leave the file in
// place so a later event can retry it.
func (w *Watcher) Process(ctx context.Context, name string) Result {
	res := Result{Name: name}
	data, err := w.fs.Read(name)
	if errors.Is(err, os.ErrNotExist) {
		// Already processed by an earlier event or scan.
		res.Err = err
		return res
	}
	if err != nil {
		res.Err = err
		w.logger.Warn("inbox: read failed", slog.String("file", name), slog.String("error", err.Error()))
		w.notify(res)
		return res
	}

	res.Batch, res.Err = w.importer.Import(ctx, bytes.NewReader(data))
	dir := ImportedDir
	switch {
	case res.Err == nil:
	case errors.Is(res.Err, apperr.ErrInvalidInput):
		dir = FailedDir
	default:
		w.logger.Warn("inbox: import failed, will retry",
			slog.String("file", name),
			slog.String("error", res.Err.Error()))
		w.notify(res)
		return res
	}

	target := ArchiveName(dir, name, data)
	if err := w.fs.Move(name, target); err != nil {
		w.logger.Warn("inbox: move failed", slog.String("file", name), slog.String("error", err.Error()))
		if res.Err == nil {
			res.Err = err
		}
		w.notify(res)
		return res
	}
	res.MovedTo = target

	if res.Err != nil {
		w.logger.Warn("inbox: rejected file",
			slog.String("file", name),
			slog.String("moved_to", target),
			slog.String("error", res.Err.Error()))
	} else {
		w.logger.Info("inbox: imported file",
			slog.String("file", name),
			slog.String("moved_to", target),
			slog.Int("saved", res.Batch.Saved),
			slog.Int("failed", res.Batch.Failed))
	}
	w.notify(res)
	return res
}

func (w *Watcher) notify(res Result) {
	if w.cb != nil {
		w.cb(res)
	}
}

// Watch scans the inbox once, then imports CSV files as they are created or
// written until ctx is cancelled. Bursts of events for the same file are
// debounced so half-written files are not imported.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.fs.Root()); err != nil {
		return err
	}
	w.logger.Info("inbox: watcher started", slog.String("root", w.fs.Root()))

	w.Scan(ctx)

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func(name string) {
		pending[name] = struct{}{}
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerCh = timer.C
		} else {
			timer.Reset(w.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("inbox: watcher stopped")
			return nil

		case <-timerCh:
			for name := range pending {
				delete(pending, name)
				w.Process(ctx, name)
			}

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Dir(ev.Name) != w.fs.Root() || !IsCSV(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				schedule(filepath.Base(ev.Name))
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("inbox: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
