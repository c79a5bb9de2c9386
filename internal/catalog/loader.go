package catalog

import (
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrNoDefault is returned when no default catalog file is configured.
var ErrNoDefault = errors.New("catalog: no default catalog configured")

// Loader serves the default catalog file, reading it at most once per
// change. Concurrent first reads share one load.
type Loader struct {
	path  string
	log   *zap.Logger
	group singleflight.Group

	seq atomic.Uint64

	mu        sync.RWMutex
	cached    *Catalog
	cachedSeq uint64
	onReload  []func(Catalog)
}

func NewLoader(path string, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{path: path, log: log}
}

// Path is the watched file, possibly empty.
func (l *Loader) Path() string { return l.path }

// Get returns the cached default catalog, loading it on first use.
func (l *Loader) Get() (Catalog, error) {
	l.mu.RLock()
	c := l.cached
	l.mu.RUnlock()
	if c != nil {
		return *c, nil
	}
	v, err, _ := l.group.Do("default", func() (any, error) { return l.load() })
	if err != nil {
		return Catalog{}, err
	}
	return v.(Catalog), nil
}

// Reload re-reads the file and replaces the cache, then notifies OnReload
// subscribers. On error the previous catalog stays in place. Reloads never
// join a first Get already in flight, since that read may predate the change.
func (l *Loader) Reload() error {
	v, err, _ := l.group.Do("reload", func() (any, error) { return l.load() })
	if err != nil {
		return err
	}
	l.mu.RLock()
	subs := l.onReload
	l.mu.RUnlock()
	for _, fn := range subs {
		fn(v.(Catalog))
	}
	return nil
}

// OnReload registers fn to run after every successful Reload.
func (l *Loader) OnReload(fn func(Catalog)) {
	l.mu.Lock()
	l.onReload = append(l.onReload, fn)
	l.mu.Unlock()
}

func (l *Loader) load() (Catalog, error) {
	if l.path == "" {
		return Catalog{}, ErrNoDefault
	}
	seq := l.seq.Add(1)
	c, err := LoadFile(l.path)
	if err != nil {
		return Catalog{}, err
	}
	c.Source = SourceDefault
	if cur, ok := l.store(seq, c); !ok {
		return cur, nil
	}
	l.log.Info("default catalog loaded",
		zap.String("path", l.path),
		zap.Int("questions", len(c.Questions)),
		zap.String("sector", c.Sector))
	return c, nil
}

// store caches c unless a load that started later has already been cached,
// in which case the newer catalog is returned instead.
func (l *Loader) store(seq uint64, c Catalog) (Catalog, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cached != nil && seq < l.cachedSeq {
		return *l.cached, false
	}
	l.cached, l.cachedSeq = &c, seq
	return c, true
}
