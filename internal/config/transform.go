package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// TransformConfig holds user-defined transformations loaded from a JSON file.
// Currently supports column renaming; additional transformations hang off the
// same document.
type TransformConfig struct {
	RenameColumns map[string]string `json:"rename_columns"`
}

// LoadTransformConfig reads and parses a transformation config file. A
// malformed file is reported by the caller and skipped, never fatal.
func LoadTransformConfig(path string) (*TransformConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transform config: %w", err)
	}

	var cfg TransformConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse transform config: %w", err)
	}

	return &cfg, nil
}
