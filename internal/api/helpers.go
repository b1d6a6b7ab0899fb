package api

import (
	"encoding/json"
	"log"
	"net/http"

	scherr "haulbook/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response failed: %v", err)
	}
}

// writeSchedulingError maps a scheduling error to its HTTP status. Internal
// errors are logged and not leaked to the caller.
func writeSchedulingError(w http.ResponseWriter, r *http.Request, err error) {
	status := scherr.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("internal error: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
