// Package api exposes the fleet core over HTTP and WebSocket.
package api

import (
	"encoding/json"
	"net/http"

	"fleetops/internal/pipeline"
)

// writeResult renders a pipeline result. Failures are non-throwing result
// objects with a 400 status; the body shape is identical either way so
// clients always parse the same envelope.
func writeResult[T any](w http.ResponseWriter, res pipeline.Result[T]) {
	w.Header().Set("Content-Type", "application/json")
	if !res.Success {
		w.WriteHeader(http.StatusBadRequest)
	}
	_ = json.NewEncoder(w).Encode(res)
}

// decodeBody parses the JSON request body into req. A malformed body is a
// validation-style rejection before the pipeline runs.
func decodeBody[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResult(w, pipeline.Fail[struct{}]("invalid request body: "+err.Error()))
		return req, false
	}
	return req, true
}
