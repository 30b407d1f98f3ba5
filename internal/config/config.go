package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	mockwire "github.com/mockwire-testing/mockwire-go"
)

// File is the on-disk endpoint file format consumed by mockwired.
type File struct {
	Settings  *Settings  `json:"settings,omitempty"`
	Endpoints []Endpoint `json:"endpoints"`
}

// Settings carries the mocker configuration in file-friendly units.
type Settings struct {
	BaseURL         string            `json:"baseURL,omitempty"`
	DefaultDelayMS  int               `json:"defaultDelayMs,omitempty"`
	DefaultHeaders  map[string]string `json:"defaultHeaders,omitempty"`
	DefaultPriority int               `json:"defaultPriority,omitempty"`
	LogRequests     bool              `json:"logRequests,omitempty"`
	RecordRequests  bool              `json:"recordRequests,omitempty"`
}

// Endpoint is the serializable subset of a definition. Dynamic
// behavior comes from Script; Go handlers cannot be expressed in a
// file.
type Endpoint struct {
	Method       string            `json:"method"`
	Path         string            `json:"path"`
	Response     interface{}       `json:"response,omitempty"`
	Script       string            `json:"script,omitempty"`
	Status       int               `json:"status,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	DelayMS      int               `json:"delayMs,omitempty"`
	Priority     int               `json:"priority,omitempty"`
	Query        map[string]string `json:"query,omitempty"`
	MatchHeaders map[string]string `json:"matchHeaders,omitempty"`
	BodyJSONPath map[string]string `json:"bodyJSONPath,omitempty"`
	BodyXPath    map[string]string `json:"bodyXPath,omitempty"`
	NetworkError string            `json:"networkError,omitempty"`
}

// Definition converts the file entry into an engine definition.
func (e Endpoint) Definition() mockwire.Definition {
	return mockwire.Definition{
		Method:       e.Method,
		Path:         e.Path,
		Response:     e.Response,
		Script:       e.Script,
		Status:       e.Status,
		Headers:      e.Headers,
		Delay:        time.Duration(e.DelayMS) * time.Millisecond,
		Priority:     e.Priority,
		Query:        e.Query,
		MatchHeaders: e.MatchHeaders,
		BodyJSONPath: e.BodyJSONPath,
		BodyXPath:    e.BodyXPath,
		NetworkError: e.NetworkError,
	}
}

// FromDefinition converts an engine definition back into a file entry.
// Go functions (handlers, response funcs, custom predicates) cannot be
// serialized and are dropped.
func FromDefinition(d mockwire.Definition) Endpoint {
	return Endpoint{
		Method:       d.Method,
		Path:         d.Path,
		Response:     d.Response,
		Script:       d.Script,
		Status:       d.Status,
		Headers:      d.Headers,
		DelayMS:      int(d.Delay / time.Millisecond),
		Priority:     d.Priority,
		Query:        d.Query,
		MatchHeaders: d.MatchHeaders,
		BodyJSONPath: d.BodyJSONPath,
		BodyXPath:    d.BodyXPath,
		NetworkError: d.NetworkError,
	}
}

// Config converts the settings into a mocker configuration.
func (s *Settings) Config() mockwire.Config {
	if s == nil {
		return mockwire.Config{}
	}
	return mockwire.Config{
		BaseURL:         s.BaseURL,
		DefaultDelay:    time.Duration(s.DefaultDelayMS) * time.Millisecond,
		DefaultHeaders:  s.DefaultHeaders,
		DefaultPriority: s.DefaultPriority,
		LogRequests:     s.LogRequests,
		RecordRequests:  s.RecordRequests,
	}
}

// Load reads an endpoint file.
func Load(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open endpoint file: %w", err)
	}
	defer file.Close()

	var f File
	if err := json.NewDecoder(file).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode endpoint file: %w", err)
	}

	return &f, nil
}

// Save writes an endpoint file.
func Save(path string, f *File) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create endpoint file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(f); err != nil {
		return fmt.Errorf("failed to encode endpoint file: %w", err)
	}

	return nil
}

// Apply merges the file's settings and registers its endpoints on the
// mocker, returning how many were registered.
func Apply(f *File, m *mockwire.Mocker) (int, error) {
	if f.Settings != nil {
		m.UpdateConfig(f.Settings.Config())
	}

	for i, endpoint := range f.Endpoints {
		if err := m.Register(endpoint.Definition()); err != nil {
			return i, fmt.Errorf("endpoint %d (%s %s): %w", i, endpoint.Method, endpoint.Path, err)
		}
	}
	return len(f.Endpoints), nil
}

// Validate checks every endpoint in the file without registering
// anything permanent.
func Validate(f *File) error {
	m, err := mockwire.New()
	if err != nil {
		return err
	}
	_, err = Apply(f, m)
	return err
}
