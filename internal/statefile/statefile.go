package statefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
)

// Read decodes the JSON file at path into dest.
// A missing file is not an error: found=false.
func Read(path string, dest interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %v: %w", path, err, contracts.ErrPersistence)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode %s: %v: %w", path, err, contracts.ErrPersistence)
	}
	return true, nil
}

// Write encodes v as indented JSON and replaces path atomically (temp file + rename)
func Write(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %v: %w", path, err, contracts.ErrPersistence)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %v: %w", dir, err, contracts.ErrPersistence)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %v: %w", path, err, contracts.ErrPersistence)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %v: %w", tmpName, err, contracts.ErrPersistence)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %v: %w", tmpName, err, contracts.ErrPersistence)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %v: %w", path, err, contracts.ErrPersistence)
	}
	return nil
}
