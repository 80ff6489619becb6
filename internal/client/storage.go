package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Sydnec/MyAnimeTierList/pkg/models"
)

// Storage persists the board replica to a local JSON file, the terminal
// equivalent of the browser's localStorage mirror.
type Storage struct {
	Path string
}

// DefaultStorage writes under ~/.myanimetierlist/state.json.
func DefaultStorage() *Storage {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return &Storage{Path: filepath.Join(home, ".myanimetierlist", "state.json")}
}

// Load reads the snapshot. Returns (nil, nil) when none exists yet.
func (st *Storage) Load() (*models.CollaborativeState, error) {
	b, err := os.ReadFile(st.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	state := models.NewCollaborativeState()
	if err := json.Unmarshal(b, state); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	// presence is per-connection, never restored from disk
	state.ConnectedUsers = 0
	return state, nil
}

// Save writes the snapshot atomically (temp file + rename).
func (st *Storage) Save(state *models.CollaborativeState) error {
	if err := os.MkdirAll(filepath.Dir(st.Path), 0o755); err != nil {
		return fmt.Errorf("ensure snapshot dir: %w", err)
	}

	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := st.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, st.Path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
