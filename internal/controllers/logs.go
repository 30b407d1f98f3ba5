package controllers

import (
	"net/http"
	"strconv"

	mockwire "github.com/mockwire-testing/mockwire-go"
)

// LogsController serves the mocker's captured log entries.
type LogsController struct {
	mocker *mockwire.Mocker
}

// NewLogsController creates a new logs controller.
func NewLogsController(mocker *mockwire.Mocker) *LogsController {
	return &LogsController{mocker: mocker}
}

// Get handles GET /_mockwire/logs. startIndex/endIndex query
// parameters slice the captured entries.
func (lc *LogsController) Get(w http.ResponseWriter, r *http.Request) {
	logs := lc.mocker.LogEntries()
	if logs == nil {
		logs = []mockwire.LogEntry{}
	}

	start, end := 0, len(logs)
	if v, err := strconv.Atoi(r.URL.Query().Get("startIndex")); err == nil && v >= 0 && v <= len(logs) {
		start = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("endIndex")); err == nil && v >= start && v <= len(logs) {
		end = v
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs": logs[start:end],
	})
}
