package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	mockwire "github.com/mockwire-testing/mockwire-go"
	"github.com/mockwire-testing/mockwire-go/internal/config"
	"github.com/mockwire-testing/mockwire-go/internal/util"
)

// EndpointsController handles the endpoint collection admin routes.
type EndpointsController struct {
	mocker *mockwire.Mocker
	logger *util.Logger
}

// NewEndpointsController creates a new endpoints controller.
func NewEndpointsController(mocker *mockwire.Mocker, logger *util.Logger) *EndpointsController {
	return &EndpointsController{
		mocker: mocker,
		logger: logger,
	}
}

// Get handles GET /_mockwire/endpoints. With replayable=true the
// listing carries full serializable definitions instead of the
// inspection summary, suitable for saving and re-posting.
func (ec *EndpointsController) Get(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("replayable") == "true" {
		defs := ec.mocker.Definitions()
		endpoints := make([]config.Endpoint, 0, len(defs))
		for _, def := range defs {
			endpoints = append(endpoints, config.FromDefinition(def))
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"endpoints": endpoints,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"endpoints": ec.mocker.Endpoints(),
	})
}

// Post handles POST /_mockwire/endpoints. The body may be a single
// endpoint object, a raw array, or a wrapped {"endpoints": [...]}.
func (ec *EndpointsController) Post(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	endpoints, err := decodeEndpoints(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	for _, endpoint := range endpoints {
		if err := ec.mocker.Register(endpoint.Definition()); err != nil {
			ec.logger.Errorf("failed to register %s %s: %v", endpoint.Method, endpoint.Path, err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	ec.logger.Infof("registered %d endpoint(s)", len(endpoints))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"endpoints": ec.mocker.Endpoints(),
	})
}

// Delete handles DELETE /_mockwire/endpoints. With method and path
// query parameters it removes one registration; without, it clears
// everything, shared state included.
func (ec *EndpointsController) Delete(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("method")
	path := r.URL.Query().Get("path")

	if method == "" && path == "" {
		ec.mocker.ClearAll()
		ec.logger.Info("cleared all endpoints and state")
		writeJSON(w, http.StatusOK, map[string]interface{}{"endpoints": []interface{}{}})
		return
	}

	if err := ec.mocker.RemoveEndpoint(strings.ToUpper(method), path); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"endpoints": ec.mocker.Endpoints(),
	})
}

func decodeEndpoints(body []byte) ([]config.Endpoint, error) {
	trimmed := strings.TrimSpace(string(body))

	switch {
	case strings.HasPrefix(trimmed, "["):
		var endpoints []config.Endpoint
		if err := json.Unmarshal(body, &endpoints); err != nil {
			return nil, err
		}
		return endpoints, nil
	default:
		var wrapped struct {
			Endpoints []config.Endpoint `json:"endpoints"`
		}
		if err := json.Unmarshal(body, &wrapped); err == nil && len(wrapped.Endpoints) > 0 {
			return wrapped.Endpoints, nil
		}
		var single config.Endpoint
		if err := json.Unmarshal(body, &single); err != nil {
			return nil, err
		}
		return []config.Endpoint{single}, nil
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
