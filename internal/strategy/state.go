package strategy

import (
	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/statefile"
)

// SaveState writes the position map to the state file atomically
func (s *Breakout) SaveState() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return statefile.Write(s.deps.StatePath, s.Positions())
}

// LoadState replaces the in-memory position map with the state file contents.
// A missing file yields an empty map.
func (s *Breakout) LoadState() error {
	loaded := make(map[string]contracts.PositionState)
	found, err := statefile.Read(s.deps.StatePath, &loaded)
	if err != nil {
		return err
	}
	if loaded == nil {
		// 파일 내용이 null
		loaded = make(map[string]contracts.PositionState)
	}

	s.mu.Lock()
	s.positions = loaded
	s.mu.Unlock()

	s.log.WithFields(map[string]interface{}{
		"found":     found,
		"positions": len(loaded),
	}).Info("position state loaded")
	return nil
}
