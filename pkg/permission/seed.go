package permission

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout of a permissions file:
//
//	permissions:
//	  - role: guest
//	    resource: grids
//	    view: true
type SeedFile struct {
	Permissions []Rule `yaml:"permissions"`
}

// LoadSeed decodes and validates a permissions document.
func LoadSeed(r io.Reader) ([]Rule, error) {
	var file SeedFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty permissions file", ErrInvalidRule)
		}
		return nil, fmt.Errorf("failed to parse permissions: %w", err)
	}
	if err := ValidateBatch(file.Permissions); err != nil {
		return nil, err
	}
	return file.Permissions, nil
}

// LoadSeedFile reads a permissions file from disk.
func LoadSeedFile(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open permissions file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rules, err := LoadSeed(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// MarshalSeed renders rules in the permissions file layout.
func MarshalSeed(rules []Rule) ([]byte, error) {
	return yaml.Marshal(SeedFile{Permissions: rules})
}
