package handler

import (
	"encoding/json"
	"net/http"

	"github.com/teleperson/demo-generator/internal/errs"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError writes a JSON error response with the given HTTP status code.
func writeError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: message, Code: code})
}

// writeErr maps a classified failure onto its status code and error body.
func writeErr(w http.ResponseWriter, err error) {
	code := string(errs.KindOf(err))
	if code == "" {
		code = "INTERNAL_ERROR"
	}
	writeError(w, errs.HTTPStatus(err), errs.Message(err), code)
}

// writeJSON writes a JSON response with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON request body of at most 1 MiB into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.Wrap(errs.BadRequest, err, "Invalid JSON body")
	}
	return nil
}
