// ABOUTME: File-backed credential store kept in the XDG config directory
// ABOUTME: Persists tokens between CLI invocations with owner-only permissions

package tokenstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// CredentialsFile is the file name used inside the config directory
const CredentialsFile = "credentials.json"

// File stores values as a flat JSON object on disk.
// Every Set and Remove rewrites the whole file.
type File struct {
	configDir string
	mu        sync.Mutex
}

// NewFile creates a store rooted at configDir
func NewFile(configDir string) *File {
	return &File{configDir: configDir}
}

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "timizia")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "timizia")
}

// Path returns the credentials file location
func (f *File) Path() string {
	return filepath.Join(f.configDir, CredentialsFile)
}

func (f *File) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

func (f *File) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.save(values)
}

// load reads the file. A missing or corrupt file reads as empty.
func (f *File) load() (map[string]string, error) {
	data, err := os.ReadFile(f.Path())
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		slog.Warn("Ignoring unreadable credentials file", "path", f.Path(), "error", err)
		return map[string]string{}, nil
	}
	return values, nil
}

// save writes values through a temp file and rename
func (f *File) save(values map[string]string) error {
	if f.configDir == "" {
		return fmt.Errorf("no config directory for credentials")
	}
	if err := os.MkdirAll(f.configDir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.configDir, CredentialsFile+".*")
	if err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("write credentials: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmpName, f.Path()); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}
