// Package catalog stores uploaded database files and tracks which of them
// can be opened.
//
// Files are copied verbatim into a single upload directory and keyed by
// their original file name. A file joins the usable set only after an
// engine has opened it and listed its tables.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/leapstack-labs/sqlview/pkg/adapter"
	"github.com/leapstack-labs/sqlview/pkg/core"
)

// ErrAlreadyLoaded is returned by Save when the name is already registered.
// The existing entry is returned alongside it and the file is left untouched.
var ErrAlreadyLoaded = errors.New("database already loaded")

// tempPrefix marks in-flight uploads so directory scans skip them.
const tempPrefix = ".sqlview-upload-"

// Entry describes a usable uploaded database.
type Entry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Engine  string    `json:"engine"`
	Size    int64     `json:"size"`
	AddedAt time.Time `json:"added_at"`
}

// Options configures a Catalog.
type Options struct {
	// Engines holds per-engine params passed to adapters when probing and opening.
	Engines adapter.EngineParams
	Logger  *slog.Logger
}

// fileStamp identifies a file version so rejected files are validated once.
type fileStamp struct {
	size    int64
	modTime time.Time
}

// Catalog is the set of uploaded databases. It is safe for concurrent use.
type Catalog struct {
	dir     string
	engines adapter.EngineParams
	logger  *slog.Logger

	// fileMu serializes writes to the upload directory with registration.
	fileMu sync.Mutex

	mu       sync.RWMutex
	entries  map[string]*Entry
	order    []string
	rejected map[string]fileStamp
}

// New creates a catalog rooted at dir. Call Load before use.
func New(dir string, opts Options) *Catalog {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Catalog{
		dir:      dir,
		engines:  opts.Engines,
		logger:   logger,
		entries:  make(map[string]*Entry),
		rejected: make(map[string]fileStamp),
	}
}

// Dir returns the upload directory.
func (c *Catalog) Dir() string {
	return c.dir
}

// Load creates the upload directory if needed and registers every file in
// it that an engine accepts.
func (c *Catalog) Load(ctx context.Context) error {
	if err := os.MkdirAll(c.dir, 0750); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	_, err := c.Refresh(ctx)
	return err
}

// Refresh rescans the upload directory. New valid files are registered and
// entries whose file disappeared are dropped. It reports whether the set changed.
func (c *Catalog) Refresh(ctx context.Context) (bool, error) {
	c.fileMu.Lock()
	defer c.fileMu.Unlock()

	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return false, fmt.Errorf("failed to read upload directory: %w", err)
	}

	changed := false
	present := make(map[string]bool, len(dirEntries))

	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || strings.HasPrefix(name, tempPrefix) {
			continue
		}
		present[name] = true

		if _, ok := c.Get(name); ok {
			continue
		}

		info, err := de.Info()
		if err != nil {
			continue
		}
		stamp := fileStamp{size: info.Size(), modTime: info.ModTime()}
		if c.wasRejected(name, stamp) {
			continue
		}

		path := filepath.Join(c.dir, name)
		engine, err := adapter.Detect(ctx, path, c.engines, c.logger)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return changed, ctxErr
			}
			c.reject(name, stamp)
			c.logger.Warn("skipping file that is not a valid database", "file", name, "error", err)
			continue
		}

		c.register(&Entry{
			Name:    name,
			Path:    path,
			Engine:  engine,
			Size:    info.Size(),
			AddedAt: info.ModTime(),
		})
		c.logger.Info("registered database", "name", name, "engine", engine)
		changed = true
	}

	for _, entry := range c.List() {
		if !present[entry.Name] {
			c.unregister(entry.Name)
			c.logger.Info("database file removed", "name", entry.Name)
			changed = true
		}
	}

	return changed, nil
}

// Save copies r verbatim to the upload directory under name and validates it.
//
// If name is already registered the existing entry is returned together
// with ErrAlreadyLoaded. A file that no engine can open stays on disk but is
// not registered, and a *core.NotDatabaseError is returned.
func (c *Catalog) Save(ctx context.Context, name string, r io.Reader) (*Entry, error) {
	name, err := SanitizeName(name)
	if err != nil {
		return nil, err
	}

	c.fileMu.Lock()
	defer c.fileMu.Unlock()

	if existing, ok := c.Get(name); ok {
		return &existing, ErrAlreadyLoaded
	}

	path := filepath.Join(c.dir, name)
	size, err := writeFile(c.dir, path, r)
	if err != nil {
		return nil, err
	}

	engine, err := adapter.Detect(ctx, path, c.engines, c.logger)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if info, statErr := os.Stat(path); statErr == nil {
			c.reject(name, fileStamp{size: info.Size(), modTime: info.ModTime()})
		}
		c.logger.Warn("uploaded file is not a valid database", "file", name, "error", err)
		return nil, err
	}

	entry := &Entry{
		Name:    name,
		Path:    path,
		Engine:  engine,
		Size:    size,
		AddedAt: time.Now(),
	}
	c.register(entry)
	c.logger.Info("uploaded database", "name", name, "engine", engine, "bytes", size)

	saved := *entry
	return &saved, nil
}

// writeFile streams r into a temp file in dir and renames it to path.
func writeFile(dir, path string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	size, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("failed to write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to write upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to store upload: %w", err)
	}
	return size, nil
}

// List returns the registered databases in registration order.
func (c *Catalog) List() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, *c.entries[name])
	}
	return out
}

// Names returns the registered database names in registration order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

// Get returns the entry registered under name.
func (c *Catalog) Get(name string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[name]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Len returns the number of registered databases.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Open opens the named database with the engine that accepted it.
// The caller owns the returned adapter and must close it.
func (c *Catalog) Open(ctx context.Context, name string) (core.Adapter, error) {
	entry, ok := c.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrDatabaseNotFound, name)
	}
	return adapter.Open(ctx, entry.Engine, entry.Path, c.engines, c.logger)
}

// Remove unregisters name and deletes its file.
func (c *Catalog) Remove(name string) error {
	c.fileMu.Lock()
	defer c.fileMu.Unlock()

	entry, ok := c.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrDatabaseNotFound, name)
	}

	if err := os.Remove(entry.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove database file: %w", err)
	}
	c.unregister(name)
	c.logger.Info("removed database", "name", name)
	return nil
}

func (c *Catalog) register(e *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[e.Name]; !ok {
		c.order = append(c.order, e.Name)
	}
	c.entries[e.Name] = e
	delete(c.rejected, e.Name)
}

func (c *Catalog) unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Catalog) reject(name string, stamp fileStamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rejected[name] = stamp
}

func (c *Catalog) wasRejected(name string, stamp fileStamp) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	prev, ok := c.rejected[name]
	return ok && prev.size == stamp.size && prev.modTime.Equal(stamp.modTime)
}

// SanitizeName reduces an uploaded file name to its base name.
// Names that cannot address a file inside the upload directory are rejected.
func SanitizeName(name string) (string, error) {
	// Browsers on Windows may send full paths.
	name = strings.ReplaceAll(name, `\`, "/")
	base := filepath.Base(strings.TrimSpace(name))

	switch {
	case base == "", base == ".", base == "..", base == "/":
		return "", fmt.Errorf("%w: %q", core.ErrInvalidName, name)
	case strings.ContainsRune(base, '/'), strings.ContainsRune(base, 0):
		return "", fmt.Errorf("%w: %q", core.ErrInvalidName, name)
	case strings.HasPrefix(base, tempPrefix):
		return "", fmt.Errorf("%w: %q", core.ErrInvalidName, name)
	}
	return base, nil
}
