// Package config loads and hot-reloads the yaml tuning assets for bases and
// actions.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrNotPulledYet means the requested config asset has not been loaded.
// Callers inside a frame loop should treat it as transient and retry next
// frame.
var ErrNotPulledYet = errors.New("config: not pulled yet")

// Registry caches raw config assets by name and decodes them on demand. It
// is safe for the watcher goroutine to reload assets while the frame loop
// pulls them.
type Registry struct {
	dir string

	mu     sync.RWMutex
	assets map[string][]byte
}

func NewRegistry(dir string) *Registry {
	return &Registry{
		dir:    dir,
		assets: make(map[string][]byte),
	}
}

// LoadAll reads every yaml file in the registry's directory.
func (r *Registry) LoadAll() error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("config: read dir %s: %w", r.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isConfigFile(entry.Name()) {
			continue
		}
		if err := r.Load(assetName(entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Load reads (or re-reads) a single asset by name, without its extension.
func (r *Registry) Load(name string) error {
	data, err := os.ReadFile(filepath.Join(r.dir, name+".yaml"))
	if err != nil {
		return fmt.Errorf("config: load %s: %w", name, err)
	}
	r.mu.Lock()
	r.assets[name] = data
	r.mu.Unlock()
	return nil
}

// Reload re-reads the asset a changed file path belongs to. Non-config paths
// are ignored.
func (r *Registry) Reload(path string) error {
	if !isConfigFile(path) {
		return nil
	}
	return r.Load(assetName(filepath.Base(path)))
}

// Pull decodes the named asset into out. Returns ErrNotPulledYet when the
// asset has not been loaded.
func (r *Registry) Pull(name string, out any) error {
	r.mu.RLock()
	data, ok := r.assets[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("config: pull %s: %w", name, ErrNotPulledYet)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config: unmarshal %s: %w", name, err)
	}
	return nil
}

func isConfigFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func assetName(base string) string {
	return strings.TrimSuffix(base, filepath.Ext(base))
}
