package plugin

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrPluginNotFound is returned when no plugin has the requested name.
	ErrPluginNotFound = errors.New("plugin not found")
	// ErrActionNotSupported is returned when a plugin does not list an action.
	ErrActionNotSupported = errors.New("action not supported by plugin")
)

const manifestName = "plugin.json"

// Manager keeps the set of plugins found under a directory.
type Manager struct {
	mu      sync.RWMutex
	dir     string
	plugins map[string]*Plugin
	log     *zap.Logger
}

// NewManager returns a manager for dir. Call Discover to load plugins.
func NewManager(dir string, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{dir: dir, plugins: make(map[string]*Plugin), log: log}
}

// Discover rescans the plugin directory. A missing directory yields no
// plugins. Subdirectories without a readable manifest are skipped.
func (m *Manager) Discover() error {
	found := make(map[string]*Plugin)

	entries, err := os.ReadDir(m.dir)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, err := loadPlugin(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			if !os.IsNotExist(err) {
				m.log.Warn("skipping plugin", zap.String("dir", entry.Name()), zap.Error(err))
			}
			continue
		}
		found[p.Manifest.Name] = p
	}

	m.mu.Lock()
	m.plugins = found
	m.mu.Unlock()

	m.log.Debug("plugins discovered", zap.Int("count", len(found)), zap.String("dir", m.dir))
	return nil
}

func loadPlugin(dir string) (*Plugin, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	if manifest.Name == "" || manifest.Executable == "" {
		return nil, errors.New("manifest needs a name and an executable")
	}

	return &Plugin{
		Manifest:   manifest,
		Path:       dir,
		Executable: filepath.Join(dir, manifest.Executable),
	}, nil
}

// Get returns the plugin with the given name.
func (m *Manager) Get(name string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.plugins[name]
	if !ok {
		return nil, ErrPluginNotFound
	}
	return p, nil
}

// Resolve returns the named plugin if it supports action.
func (m *Manager) Resolve(name, action string) (*Plugin, error) {
	p, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	if !p.Manifest.Supports(action) {
		return nil, ErrActionNotSupported
	}
	return p, nil
}

// List returns all plugins sorted by name.
func (m *Manager) List() []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugins := make([]*Plugin, 0, len(m.plugins))
	for _, p := range m.plugins {
		plugins = append(plugins, p)
	}
	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Manifest.Name < plugins[j].Manifest.Name
	})
	return plugins
}

// Dir returns the plugin directory.
func (m *Manager) Dir() string {
	return m.dir
}
