package store

import "fmt"

// Backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config selects and locates a store.
type Config struct {
	Backend string `json:"backend,omitempty"` // "file" or "sqlite"
	Path    string `json:"path,omitempty"`    // directory for file, database file for sqlite; empty disables persistence
}

// DefaultConfig returns the default store configuration: file backend,
// persistence disabled.
func DefaultConfig() Config {
	return Config{Backend: BackendFile}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	if source.Path != "" {
		c.Path = source.Path
	}
}

// NewStore creates a Store from configuration. It returns a nil Store when
// Path is empty.
func NewStore(cfg *Config) (Store, error) {
	if cfg.Path == "" {
		return nil, nil
	}

	switch cfg.Backend {
	case BackendFile, "":
		return NewFileStore(cfg.Path), nil
	case BackendSQLite:
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
