package rules

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLFile is a Provider reading every table from a single YAML document.  A missing file loads
// as an empty Snapshot, and rows with an empty match key are dropped.
type YAMLFile struct {
	Path string
}

var _ Provider = &YAMLFile{}

// Load implements Provider.
func (y *YAMLFile) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(y.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Snapshot{}, nil
		}
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	snap := &Snapshot{}
	if err := yaml.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}
	if err := snap.checkAutoClasses(); err != nil {
		return nil, fmt.Errorf("invalid rules file: %w", err)
	}
	snap.dropEmptyKeys()
	return snap, nil
}

// WriteYAML renders snap as a YAML document readable by YAMLFile.
func WriteYAML(w io.Writer, snap *Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return err
	}
	return enc.Close()
}
