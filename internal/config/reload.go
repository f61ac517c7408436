/*-------------------------------------------------------------------------
 *
 * pgEdge PostGIS Schema Manager
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package config

import (
	"fmt"
	"os"
	"sync"
)

// ReloadableConfig wraps a Config with thread-safe access and reload capability
type ReloadableConfig struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	cliFlags CLIFlags
	onReload []func(*Config)
}

// NewReloadableConfig creates a new reloadable configuration
func NewReloadableConfig(config *Config, path string, cliFlags CLIFlags) *ReloadableConfig {
	return &ReloadableConfig{
		config:   config,
		path:     path,
		cliFlags: cliFlags,
		onReload: make([]func(*Config), 0),
	}
}

// Get returns the current configuration (read-only access)
func (rc *ReloadableConfig) Get() *Config {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.config
}

// Reload reloads the configuration from the file
// Returns an error if the reload fails, but keeps the old config
func (rc *ReloadableConfig) Reload() error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.path == "" {
		return fmt.Errorf("no configuration file path set")
	}

	newConfig, err := LoadConfig(rc.path, rc.cliFlags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	rc.logRestartRequiredSettings(newConfig)

	rc.config = newConfig

	for _, callback := range rc.onReload {
		callback(newConfig)
	}

	fmt.Fprintf(os.Stderr, "Configuration reloaded successfully from %s\n", rc.path)

	return nil
}

// logRestartRequiredSettings logs settings that changed but require a restart
func (rc *ReloadableConfig) logRestartRequiredSettings(newConfig *Config) {
	old := rc.config

	// Connection settings bind the spatial router to a dialect at
	// connect time and cannot be swapped underneath it
	if old.Database.Host != newConfig.Database.Host {
		fmt.Fprintf(os.Stderr, "  WARNING: database.host changed - requires restart\n")
	}
	if old.Database.Port != newConfig.Database.Port {
		fmt.Fprintf(os.Stderr, "  WARNING: database.port changed - requires restart\n")
	}
	if old.Database.Database != newConfig.Database.Database {
		fmt.Fprintf(os.Stderr, "  WARNING: database.database changed - requires restart\n")
	}

	if old.Schema.File != newConfig.Schema.File {
		fmt.Fprintf(os.Stderr, "  NOTE: schema.file changed to %s\n", newConfig.Schema.File)
	}
}

// OnReload registers a callback to be called when configuration is reloaded
// The callback receives the new configuration
func (rc *ReloadableConfig) OnReload(fn func(*Config)) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.onReload = append(rc.onReload, fn)
}

// GetPath returns the configuration file path
func (rc *ReloadableConfig) GetPath() string {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.path
}
