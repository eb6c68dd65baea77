package roster

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidRoster is returned when a roster document cannot be read as a
// list of entries.
var ErrInvalidRoster = errors.New("invalid roster")

// document accepts both a bare list and a {players: [...]} mapping.
type document struct {
	Players []Entry `yaml:"players"`
}

// LoadFile reads a roster from a YAML or JSON file.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a roster document. JSON is valid YAML, so one decoder covers
// both formats.
func Load(r io.Reader) ([]Entry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoster, err)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidRoster)
	}

	var entries []Entry
	switch node.Content[0].Kind {
	case yaml.SequenceNode:
		err = node.Content[0].Decode(&entries)
	case yaml.MappingNode:
		var doc document
		err = node.Content[0].Decode(&doc)
		entries = doc.Players
	default:
		return nil, fmt.Errorf("%w: expected a list of players", ErrInvalidRoster)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoster, err)
	}
	return entries, nil
}
