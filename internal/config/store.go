package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/amtp-labs/amtp-cli/internal/platform"
	"github.com/spf13/viper"
)

const (
	fileType = "json"
	filePerm = 0600
)

// Store reads and writes the credential file at a single path.
type Store struct {
	path string
}

// NewStore returns a Store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Default returns the Store at DefaultPath.
func Default() *Store {
	return NewStore(DefaultPath())
}

// Path returns the file this store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load resolves every field from its environment variable, then the file,
// then the empty default. A missing or corrupt file counts as no stored values.
func (s *Store) Load() Configuration {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType(fileType)
	for _, f := range Fields {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(string(f), f.EnvVar())
	}

	// Ignore error if config file doesn't exist yet or cannot be parsed.
	_ = v.ReadInConfig()

	var cfg Configuration
	for _, f := range Fields {
		cfg.set(f, v.GetString(string(f)))
	}
	return cfg
}

// Save merges partial over the stored file, writes the result back in full
// and returns it. Empty fields of partial are skipped, so keys absent from
// it keep their stored values.
//
// Fields named in exact are written as given even when empty, and an empty
// value removes the key. Callers use this to replace a group of fields as a
// unit, or to clear one.
func (s *Store) Save(partial Configuration, exact ...Field) (Configuration, error) {
	stored := s.readRaw()
	merge(stored, partial, exact)
	if err := s.writeRaw(stored); err != nil {
		return Configuration{}, err
	}
	return fromRaw(stored), nil
}

// merge applies the Save rule to a raw stored object.
func merge(stored map[string]any, partial Configuration, exact []Field) {
	for _, f := range Fields {
		value := partial.Get(f)
		switch {
		case value != "":
			stored[string(f)] = value
		case slices.Contains(exact, f):
			delete(stored, string(f))
		}
	}
}

// readRaw returns the file contents as a generic object so keys this
// version does not know about survive a rewrite.
func (s *Store) readRaw() map[string]any {
	stored := map[string]any{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return stored
	}
	if err := json.Unmarshal(data, &stored); err != nil || stored == nil {
		return map[string]any{}
	}
	return stored
}

func (s *Store) writeRaw(stored map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := platform.WriteFilePrivate(s.path, data, filePerm); err != nil {
		return fmt.Errorf("writing config file %s: %w", s.path, err)
	}
	return nil
}

func fromRaw(stored map[string]any) Configuration {
	var cfg Configuration
	for _, f := range Fields {
		if value, ok := stored[string(f)].(string); ok {
			cfg.set(f, value)
		}
	}
	return cfg
}
