package settings

import (
	"encoding/json"
	"fmt"

	"github.com/kardolus/settings-store/types"
)

// Manager wraps a Store with record-level conveniences for a single settings
// file. The store is injected, so callers decide whether to share the
// process-wide instance or construct their own.
type Manager struct {
	store Store
	path  string
}

func NewManager(store Store, path string) *Manager {
	return &Manager{store: store, path: path}
}

// Get returns the first record with the given id, and whether one was found.
func (m *Manager) Get(id string) (types.Record, bool, error) {
	records, err := m.store.Load(m.path)
	if err != nil {
		return nil, false, err
	}

	for _, r := range records {
		if r.ID() == id {
			return r, true, nil
		}
	}

	return nil, false, nil
}

// List returns the ids of all records in file order.
func (m *Manager) List() ([]string, error) {
	records, err := m.store.Load(m.path)
	if err != nil {
		return nil, err
	}

	var result []string
	for _, r := range records {
		result = append(result, r.ID())
	}

	return result, nil
}

// Set writes record under id, stamping the id field so the stored record can
// never disagree with its key.
func (m *Manager) Set(id string, record types.Record) error {
	if id == "" {
		return fmt.Errorf("settings id must not be empty")
	}

	return m.store.Update(m.path, id, record.WithID(id))
}

func (m *Manager) Remove(id string) error {
	return m.store.Delete(m.path, id)
}

// Show serializes all records to an indented JSON string.
func (m *Manager) Show() (string, error) {
	records, err := m.store.Load(m.path)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(records, "", jsonIndent)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
