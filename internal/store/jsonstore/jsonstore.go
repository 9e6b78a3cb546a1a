// Package jsonstore encodes the task collection as the JSON array every
// backend stores under its single key, and writes indented JSON backups.
package jsonstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idilsaglam/mastertasks/internal/model"
)

// Encode renders the collection compactly. A nil slice encodes as [].
func Encode(tasks []model.StoredTask) ([]byte, error) {
	if tasks == nil {
		tasks = []model.StoredTask{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}

// Decode parses a stored collection. Empty input and JSON null both mean
// "no tasks yet".
func Decode(b []byte) ([]model.StoredTask, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []model.StoredTask{}, nil
	}
	var tasks []model.StoredTask
	if err := json.Unmarshal(trimmed, &tasks); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if tasks == nil {
		tasks = []model.StoredTask{}
	}
	return tasks, nil
}

// WriteFile saves the collection as human-readable JSON at path, creating
// parent directories as needed.
func WriteFile(path string, tasks []model.StoredTask) error {
	if tasks == nil {
		tasks = []model.StoredTask{}
	}
	b, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
