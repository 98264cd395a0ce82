// Package accessgate keeps a client-held record of which private forms this
// device has unlocked and which forms it has already submitted. It exists to
// avoid re-prompting for a token on the same device and to show a terminal
// "already submitted" state; it is advisory only and is NOT a security
// boundary. The server's single-use redemption check is the real access
// control, and nothing here is consulted by the server.
package accessgate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

type state struct {
	Granted   map[string]bool `json:"granted"`
	Submitted map[string]bool `json:"submitted"`
}

// Gate is a persistent key-set over form identifiers. All methods are safe
// for concurrent use within one process; the backing file is rewritten
// atomically via a temp file and rename.
type Gate struct {
	mu    sync.Mutex
	path  string
	state state
}

// Open loads the gate state from path, starting empty when the file does
// not exist yet.
func Open(path string) (*Gate, error) {
	g := &Gate{
		path: path,
		state: state{
			Granted:   make(map[string]bool),
			Submitted: make(map[string]bool),
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return g, nil
		}
		return nil, fmt.Errorf("failed to read access gate state: %w", err)
	}

	if err := json.Unmarshal(data, &g.state); err != nil {
		return nil, fmt.Errorf("failed to decode access gate state: %w", err)
	}
	if g.state.Granted == nil {
		g.state.Granted = make(map[string]bool)
	}
	if g.state.Submitted == nil {
		g.state.Submitted = make(map[string]bool)
	}

	return g, nil
}

// HasAccess reports whether a token was already validated for this form on
// this device. Callers should treat public forms as always granted.
func (g *Gate) HasAccess(formID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Granted[formID]
}

// Grant records a successful token validation for this form
func (g *Gate) Grant(formID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state.Granted[formID] = true
	return g.persist()
}

// HasSubmitted reports whether this device already submitted a response
func (g *Gate) HasSubmitted(formID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Submitted[formID]
}

// MarkSubmitted records a successful response submission for this form
func (g *Gate) MarkSubmitted(formID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state.Submitted[formID] = true
	return g.persist()
}

// persist writes the state file atomically. Caller holds g.mu.
func (g *Gate) persist() error {
	data, err := json.MarshalIndent(g.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode access gate state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(g.path), 0o700); err != nil {
		return fmt.Errorf("failed to create access gate directory: %w", err)
	}

	tmp := g.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write access gate state: %w", err)
	}

	if err := os.Rename(tmp, g.path); err != nil {
		return fmt.Errorf("failed to replace access gate state: %w", err)
	}

	return nil
}
