// Package store persists per-monitor tiling state — active layout, per-layout
// window slot memory, and per-container accordion orientation — as a JSON
// file so monitors restore their arrangement across disconnects and daemon
// restarts.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/accordwm/accordwm/internal/platform"
	"github.com/accordwm/accordwm/internal/tiling"
)

// MonitorRecord is the persisted state for one monitor.
type MonitorRecord struct {
	ActiveLayout int `json:"active_layout"`
	// Memory maps layout id -> window id -> container position.
	Memory map[int]map[uint32]int `json:"memory,omitempty"`
	// Orientations maps container position -> "horizontal" | "vertical".
	Orientations map[int]string `json:"orientations,omitempty"`
}

type stateFile struct {
	Monitors map[int]MonitorRecord `json:"monitors"`
}

// Store reads and writes the state file. Safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
}

// DefaultPath returns the default state file location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "accordwm", "state.json"), nil
}

// New creates a store backed by the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// LoadMonitor returns the persisted layout, slot memory, and orientations for
// a monitor. The final return is false when no record exists.
func (s *Store) LoadMonitor(id platform.MonitorID) (tiling.LayoutID, map[tiling.LayoutID]map[platform.WindowID]int, map[int]tiling.Orientation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read()
	if err != nil {
		return 0, nil, nil, false
	}
	rec, ok := state.Monitors[int(id)]
	if !ok {
		return 0, nil, nil, false
	}

	memory := make(map[tiling.LayoutID]map[platform.WindowID]int, len(rec.Memory))
	for layoutID, slots := range rec.Memory {
		m := make(map[platform.WindowID]int, len(slots))
		for wid, pos := range slots {
			m[platform.WindowID(wid)] = pos
		}
		memory[tiling.LayoutID(layoutID)] = m
	}

	orientations := make(map[int]tiling.Orientation, len(rec.Orientations))
	for pos, name := range rec.Orientations {
		if name == "vertical" {
			orientations[pos] = tiling.OrientationVertical
		} else {
			orientations[pos] = tiling.OrientationHorizontal
		}
	}

	return tiling.LayoutID(rec.ActiveLayout), memory, orientations, true
}

// SaveMonitor writes one monitor's record, preserving other monitors'
// entries.
func (s *Store) SaveMonitor(id platform.MonitorID, layout tiling.LayoutID, memory map[tiling.LayoutID]map[platform.WindowID]int, orientations map[int]tiling.Orientation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read()
	if err != nil {
		state = &stateFile{Monitors: make(map[int]MonitorRecord)}
	}

	rec := MonitorRecord{
		ActiveLayout: int(layout),
		Memory:       make(map[int]map[uint32]int, len(memory)),
		Orientations: make(map[int]string, len(orientations)),
	}
	for layoutID, slots := range memory {
		m := make(map[uint32]int, len(slots))
		for wid, pos := range slots {
			m[uint32(wid)] = pos
		}
		rec.Memory[int(layoutID)] = m
	}
	for pos, o := range orientations {
		rec.Orientations[pos] = o.String()
	}

	state.Monitors[int(id)] = rec
	return s.write(state)
}

// DeleteMonitor removes a monitor's record, used when a monitor and its
// persisted state are both gone.
func (s *Store) DeleteMonitor(id platform.MonitorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read()
	if err != nil {
		return nil
	}
	delete(state.Monitors, int(id))
	return s.write(state)
}

func (s *Store) read() (*stateFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &stateFile{Monitors: make(map[int]MonitorRecord)}, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	var state stateFile
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if state.Monitors == nil {
		state.Monitors = make(map[int]MonitorRecord)
	}
	return &state, nil
}

func (s *Store) write(state *stateFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}
