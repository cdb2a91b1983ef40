// Package snapshot encodes and decodes the persisted form of a needed list.
package snapshot

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Version is the only snapshot layout this build understands.
const Version = 1

// ErrIncompatible is returned for snapshots written with another layout.
var ErrIncompatible = errors.New("snapshot: incompatible version")

// Snapshot is the on-disk representation of one conversation's list.
type Snapshot struct {
	Version int      `yaml:"version"`
	Items   []string `yaml:"items"`
}

// Encode serializes items in the order given.
func Encode(items []string) ([]byte, error) {
	if items == nil {
		items = []string{}
	}
	data, err := yaml.Marshal(Snapshot{Version: Version, Items: items})
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return data, nil
}

// Decode parses data. A missing version is read as the current one.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	if s.Version == 0 {
		s.Version = Version
	}
	if s.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrIncompatible, s.Version)
	}
	return &s, nil
}
