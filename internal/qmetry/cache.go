package qmetry

import "sync"

// Cache stores ids resolved from the API between runs.
type Cache interface {
	FolderID(path string) (int64, bool, error)
	SaveFolderID(path string, id int64) error
	FieldID(name string) (string, bool, error)
	HasFieldIDs() (bool, error)
	SaveField(name, id string, options map[string]int64) error
	FieldOptions(name string) (map[string]int64, error)
}

type memoryCache struct {
	mu      sync.Mutex
	folders map[string]int64
	fields  map[string]string
	options map[string]map[string]int64
}

// NewMemoryCache returns a Cache that lives only in memory.
func NewMemoryCache() Cache {
	return &memoryCache{
		folders: map[string]int64{},
		fields:  map[string]string{},
		options: map[string]map[string]int64{},
	}
}

func (m *memoryCache) FolderID(path string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.folders[path]
	return id, ok, nil
}

func (m *memoryCache) SaveFolderID(path string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.folders[path] = id
	return nil
}

func (m *memoryCache) FieldID(name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.fields[name]
	return id, ok, nil
}

func (m *memoryCache) HasFieldIDs() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fields) > 0, nil
}

func (m *memoryCache) SaveField(name, id string, options map[string]int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields[name] = id
	copied := make(map[string]int64, len(options))
	for k, v := range options {
		copied[k] = v
	}
	m.options[name] = copied
	return nil
}

func (m *memoryCache) FieldOptions(name string) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.options[name]))
	for k, v := range m.options[name] {
		out[k] = v
	}
	return out, nil
}
