package statefile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	in := map[string]contracts.PositionState{
		"005930": {EntryPrice: 71000, EntryDate: "20240105", PeakPrice: 72000, BreakoutLevel: 70000},
	}

	require.NoError(t, Write(path, in))

	var out map[string]contracts.PositionState
	found, err := Read(path, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)

	// 임시 파일이 남지 않아야 함
	entries, _ := os.ReadDir(filepath.Dir(path))
	assert.Len(t, entries, 1)
}

func TestRead_Missing(t *testing.T) {
	var out map[string]int
	found, err := Read(filepath.Join(t.TempDir(), "nope.json"), &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRead_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	var out map[string]int
	_, err := Read(path, &out)
	assert.True(t, errors.Is(err, contracts.ErrPersistence))
}

func TestWrite_UnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := Write(filepath.Join(blocker, "state.json"), map[string]int{"a": 1})
	assert.True(t, errors.Is(err, contracts.ErrPersistence))
}
