package credstore

// Store defines the interface for credential storage operations
// This allows us to mock the keyring in tests
type Store interface {
	Save(serverURL string, rec Record) error
	Load(serverURL string) (Record, error)
	Delete(serverURL string) error
}

// defaultStore implements Store using the OS keyring
type defaultStore struct{}

var Default Store = &defaultStore{}

func (d *defaultStore) Save(serverURL string, rec Record) error {
	return Save(serverURL, rec)
}

func (d *defaultStore) Load(serverURL string) (Record, error) {
	return Load(serverURL)
}

func (d *defaultStore) Delete(serverURL string) error {
	return Delete(serverURL)
}
