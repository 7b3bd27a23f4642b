package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/spaghettifunk/sdengine/engine/core"
)

type ManagerConfig struct {
	// BasePath is prepended to relative asset paths. Empty means the
	// process working directory.
	BasePath string
}

type Option func(*Manager)

func WithLogger(logger *log.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEvents makes the manager fire EVENT_CODE_ASSET_CHANGED on hot reload.
func WithEvents(events *core.EventBus) Option {
	return func(m *Manager) {
		m.events = events
	}
}

type record struct {
	id      core.ResourceID
	path    string
	kind    Kind
	payload any
	// One reference for the cache itself while cached, plus one per Handle.
	refs int
	// Set once the cache has dropped its own reference.
	evicted bool
}

// Manager caches assets by canonical path. Each path is loaded at most once
// while cached; payloads are shared through counted handles and torn down by
// their loader when the last reference goes away.
type Manager struct {
	basePath string
	logger   *log.Logger
	events   *core.EventBus

	mu      sync.RWMutex
	records map[core.ResourceID]*record

	loadersMu sync.Mutex
	factories map[Kind]LoaderFactory
	loaders   map[Kind]Loader
	kindOf    map[reflect.Type]Kind

	inflight singleflight.Group

	watchMu sync.Mutex
	watcher *watcher
}

func NewManager(cfg ManagerConfig, opts ...Option) (*Manager, error) {
	base := cfg.BasePath
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		base = wd
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		basePath:  abs,
		logger:    core.Logger().WithPrefix("assets"),
		records:   make(map[core.ResourceID]*record),
		factories: make(map[Kind]LoaderFactory),
		loaders:   make(map[Kind]Loader),
		kindOf:    make(map[reflect.Type]Kind),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Manager) BasePath() string {
	return m.basePath
}

// RegisterLoader binds payload type T to kind and records the factory that
// builds the kind's loader on first use.
func RegisterLoader[T any](m *Manager, kind Kind, factory LoaderFactory) error {
	t := reflect.TypeOf((*T)(nil)).Elem()

	m.loadersMu.Lock()
	defer m.loadersMu.Unlock()

	if _, ok := m.factories[kind]; ok {
		return fmt.Errorf("loader for kind %s already registered", kind)
	}
	if other, ok := m.kindOf[t]; ok {
		return fmt.Errorf("type %s already bound to kind %s", t, other)
	}
	m.factories[kind] = factory
	m.kindOf[t] = kind
	return nil
}

// Canonicalize resolves path against the base path into the absolute, clean
// form used as the cache key. Symlinks are resolved when the file exists.
func (m *Manager) Canonicalize(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.basePath, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs, nil
}

// Load returns the id of the asset at path, invoking the kind's loader only
// when the asset is not cached. Failed loads are not cached.
func (m *Manager) Load(kind Kind, path string) (core.ResourceID, error) {
	canonical, err := m.Canonicalize(path)
	if err != nil {
		return core.InvalidID, &core.LoadError{Kind: kind.String(), Path: path, Err: err}
	}
	id := core.NewPathID(canonical)

	if ok, err := m.lookup(id, kind, canonical); ok || err != nil {
		return m.resultOf(id, err)
	}

	_, err, _ = m.inflight.Do(canonical, func() (any, error) {
		// another caller may have finished while this one queued
		if ok, err := m.lookup(id, kind, canonical); ok || err != nil {
			return nil, err
		}

		loader, err := m.loader(kind)
		if err != nil {
			return nil, err
		}
		payload, err := loader.Load(canonical)
		if err != nil {
			return nil, &core.LoadError{Kind: kind.String(), Path: canonical, Err: err}
		}

		m.mu.Lock()
		m.records[id] = &record{id: id, path: canonical, kind: kind, payload: payload, refs: 1}
		m.mu.Unlock()

		m.logger.Debug("loaded", "kind", kind, "path", canonical, "id", id)
		return nil, nil
	})
	if err == nil {
		// the shared call may have loaded the path as another kind
		_, err = m.lookup(id, kind, canonical)
	}
	return m.resultOf(id, err)
}

func (m *Manager) resultOf(id core.ResourceID, err error) (core.ResourceID, error) {
	if err != nil {
		m.logger.Error(err.Error())
		return core.InvalidID, err
	}
	return id, nil
}

func (m *Manager) lookup(id core.ResourceID, kind Kind, canonical string) (bool, error) {
	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if rec.path != canonical {
		return false, fmt.Errorf("%w: %s and %s both hash to %s", core.ErrIDCollision, rec.path, canonical, id)
	}
	if rec.kind != kind {
		return false, fmt.Errorf("%w: '%s' is cached as %s, requested as %s", core.ErrAssetTypeMismatch, canonical, rec.kind, kind)
	}
	return true, nil
}

func (m *Manager) loader(kind Kind) (Loader, error) {
	m.loadersMu.Lock()
	defer m.loadersMu.Unlock()

	if l, ok := m.loaders[kind]; ok {
		return l, nil
	}
	factory, ok := m.factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownKind, kind)
	}
	l, err := factory()
	if err != nil {
		return nil, fmt.Errorf("failed to create %s loader: %w", kind, err)
	}
	m.loaders[kind] = l
	m.logger.Debug("loader created", "kind", kind)
	return l, nil
}

// Load loads path with the kind bound to T.
func Load[T any](m *Manager, path string) (core.ResourceID, error) {
	kind, err := kindFor[T](m)
	if err != nil {
		return core.InvalidID, err
	}
	return m.Load(kind, path)
}

// Get returns a new counted handle to the payload of id. The caller must
// Release it.
func Get[T any](m *Manager, id core.ResourceID) (*Handle[T], error) {
	m.mu.Lock()
	rec, ok := m.records[id]
	if !ok {
		m.mu.Unlock()
		err := fmt.Errorf("%w: %s", core.ErrAssetNotFound, id)
		m.logger.Error(err.Error())
		return nil, err
	}
	value, ok := rec.payload.(T)
	if !ok {
		m.mu.Unlock()
		err := fmt.Errorf("%w: %s holds %T, not %s", core.ErrAssetTypeMismatch, rec.path, rec.payload, reflect.TypeOf((*T)(nil)).Elem())
		m.logger.Error(err.Error())
		return nil, err
	}
	rec.refs++
	m.mu.Unlock()

	return &Handle[T]{manager: m, rec: rec, value: value}, nil
}

// MustGet is Get for callers that treat a missing or mistyped asset as a bug.
func MustGet[T any](m *Manager, id core.ResourceID) *Handle[T] {
	h, err := Get[T](m, id)
	if err != nil {
		panic(err)
	}
	return h
}

// LoadAndGet is Load followed by Get.
func LoadAndGet[T any](m *Manager, path string) (*Handle[T], error) {
	id, err := Load[T](m, path)
	if err != nil {
		return nil, err
	}
	return Get[T](m, id)
}

func kindFor[T any](m *Manager) (Kind, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	m.loadersMu.Lock()
	kind, ok := m.kindOf[t]
	m.loadersMu.Unlock()
	if !ok {
		return 0, fmt.Errorf("%w: no kind bound to %s", core.ErrUnknownKind, t)
	}
	return kind, nil
}

// Unload drops the cache's reference to id. Outstanding handles keep the
// payload alive; an unknown id only logs a warning.
func (m *Manager) Unload(id core.ResourceID) {
	m.mu.Lock()
	rec, ok := m.records[id]
	if !ok {
		m.mu.Unlock()
		m.logger.Warn("unload of unknown asset", "id", id)
		return
	}
	teardown := m.evictLocked(rec)
	m.mu.Unlock()

	if teardown {
		m.teardown(rec)
	}
}

// Clear drops the cache's reference to every asset.
func (m *Manager) Clear() {
	m.mu.Lock()
	var dead []*record
	for _, rec := range m.records {
		if m.evictLocked(rec) {
			dead = append(dead, rec)
		}
	}
	m.mu.Unlock()

	for _, rec := range dead {
		m.teardown(rec)
	}
}

func (m *Manager) Contains(id core.ResourceID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[id]
	return ok
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *Manager) PathOf(id core.ResourceID) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return "", false
	}
	return rec.path, true
}

// Shutdown clears the cache and stops the watcher.
func (m *Manager) Shutdown() error {
	m.Clear()
	return m.Close()
}

// evictLocked removes rec from the cache and drops the cache's reference.
// It reports whether the payload must now be torn down.
func (m *Manager) evictLocked(rec *record) bool {
	if rec.evicted {
		return false
	}
	rec.evicted = true
	if m.records[rec.id] == rec {
		delete(m.records, rec.id)
	}
	rec.refs--
	return rec.refs == 0
}

func (m *Manager) release(rec *record) {
	m.mu.Lock()
	rec.refs--
	teardown := rec.refs == 0
	m.mu.Unlock()

	if teardown {
		m.teardown(rec)
	}
}

func (m *Manager) teardown(rec *record) {
	m.loadersMu.Lock()
	loader, ok := m.loaders[rec.kind]
	m.loadersMu.Unlock()
	if !ok {
		return
	}
	if err := loader.Unload(rec.payload); err != nil {
		m.logger.Error("unload failed", "kind", rec.kind, "path", rec.path, "err", err)
		return
	}
	m.logger.Debug("unloaded", "kind", rec.kind, "path", rec.path)
}
