package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	mockwire "github.com/mockwire-testing/mockwire-go"
	"github.com/mockwire-testing/mockwire-go/internal/util"
)

// StateController exposes the shared state store over the admin API.
type StateController struct {
	mocker *mockwire.Mocker
	logger *util.Logger
}

// NewStateController creates a new state controller.
func NewStateController(mocker *mockwire.Mocker, logger *util.Logger) *StateController {
	return &StateController{
		mocker: mocker,
		logger: logger,
	}
}

// Get handles GET /_mockwire/state.
func (sc *StateController) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state": sc.mocker.AllState(),
	})
}

// Put handles PUT /_mockwire/state/{key}: the JSON body becomes the
// value.
func (sc *StateController) Put(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var value interface{}
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sc.mocker.SetState(key, value)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state": sc.mocker.AllState(),
	})
}

// Delete handles DELETE /_mockwire/state.
func (sc *StateController) Delete(w http.ResponseWriter, r *http.Request) {
	sc.mocker.ResetState()
	sc.logger.Info("reset shared state")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state": map[string]interface{}{},
	})
}

// RequestsController exposes the request journal.
type RequestsController struct {
	mocker *mockwire.Mocker
}

// NewRequestsController creates a new requests controller.
func NewRequestsController(mocker *mockwire.Mocker) *RequestsController {
	return &RequestsController{mocker: mocker}
}

// Get handles GET /_mockwire/requests.
func (rc *RequestsController) Get(w http.ResponseWriter, r *http.Request) {
	requests := rc.mocker.Requests()
	if requests == nil {
		requests = []mockwire.RecordedRequest{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
	})
}

// Delete handles DELETE /_mockwire/requests.
func (rc *RequestsController) Delete(w http.ResponseWriter, r *http.Request) {
	rc.mocker.ResetRequests()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"requests": []interface{}{},
	})
}
