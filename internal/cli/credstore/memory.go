package credstore

import "sync"

// Memory is an in-memory Store used by tests and by the e2e suite, where
// no OS keyring is available.
type Memory struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (m *Memory) Save(serverURL string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[serverURL] = rec
	return nil
}

func (m *Memory) Load(serverURL string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[serverURL]
	if !ok || rec.Token == "" {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) Delete(serverURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, serverURL)
	return nil
}
