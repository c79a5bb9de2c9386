package catalog

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a Loader whenever its file is written or replaced.
type Watcher struct {
	fs       *fsnotify.Watcher
	loader   *Loader
	log      *zap.Logger
	debounce time.Duration

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Watch starts watching the loader's file. The parent directory is watched so
// that editors replacing the file by rename are seen too.
func Watch(ctx context.Context, loader *Loader, debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	if loader.Path() == "" {
		return nil, ErrNoDefault
	}
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(loader.Path())); err != nil {
		_ = fw.Close()
		return nil, err
	}
	w := &Watcher{
		fs:       fw,
		loader:   loader,
		log:      log,
		debounce: debounce,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	name := filepath.Base(w.loader.Path())

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			// editors emit bursts of events per save
			pending = time.After(w.debounce)
		case <-pending:
			pending = nil
			if err := w.loader.Reload(); err != nil {
				w.log.Warn("default catalog reload failed", zap.String("path", w.loader.Path()), zap.Error(err))
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("catalog watcher error", zap.Error(err))
		}
	}
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stop)
		<-w.done
		err = w.fs.Close()
	})
	return err
}
