package mockwire

import "sync"

// StateStore is the process-lifetime key-value store shared by every
// handler of one mocker instance. Handlers receive it by reference, so
// a value written while serving one request is visible to every later
// request.
//
// Individual operations are safe for concurrent use, but handler
// execution is not serialized: two concurrent handlers that both
// read-modify-write the same key race exactly as uncoordinated
// concurrent code does. Coordinating such handlers is the mock
// author's job.
type StateStore struct {
	mu     sync.RWMutex
	values map[string]interface{}
}

// NewStateStore creates an empty state store.
func NewStateStore() *StateStore {
	return &StateStore{
		values: make(map[string]interface{}),
	}
}

// Get returns the value stored under key.
func (s *StateStore) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value under key.
func (s *StateStore) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Delete removes a key.
func (s *StateStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// All returns a shallow copy of the whole mapping.
func (s *StateStore) All() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]interface{}, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Reset empties the store.
func (s *StateStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]interface{})
}

// raw exposes the live mapping for script handlers, which mutate it
// in place the way Go handlers mutate values obtained via Get.
func (s *StateStore) raw() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values
}
