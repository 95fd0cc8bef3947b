package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/grade-pilot/gradepilot/internal/assess"
	"github.com/grade-pilot/gradepilot/internal/rubric"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// writeError maps service errors onto HTTP statuses: invalid rubric or
// override configuration is the client's problem, an unknown rubric is 404,
// everything else is a server error.
func writeError(w http.ResponseWriter, err error) {
	var ve *rubric.ValidationError
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, assess.ErrRubricNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
