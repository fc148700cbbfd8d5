package secrets

import (
	"errors"
	"sync"
)

// memMechanism is an in-memory Mechanism with injectable failures.
type memMechanism struct {
	mu   sync.Mutex
	name string
	data map[string]map[string]string

	getErr    error
	setErr    error
	deleteErr error

	gets    int
	deletes int
}

func newMem(name string) *memMechanism {
	return &memMechanism{name: name, data: map[string]map[string]string{}}
}

func (m *memMechanism) put(service, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[service] == nil {
		m.data[service] = map[string]string{}
	}
	m.data[service][key] = value
}

func (m *memMechanism) has(service, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[service][key]
	return ok
}

func (m *memMechanism) Name() string { return m.name }

func (m *memMechanism) Get(service, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.data[service][key]
	if !ok {
		return "", mechErr(m.name, "get", FailureAbsent, nil)
	}
	return v, nil
}

func (m *memMechanism) Set(service, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.put(service, key, value)
	return nil
}

func (m *memMechanism) Delete(service, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.data[service][key]; !ok {
		return mechErr(m.name, "delete", FailureAbsent, nil)
	}
	delete(m.data[service], key)
	return nil
}

var errDBus = errors.New("dbus: connection closed by user")
