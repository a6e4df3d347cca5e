package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{entity.ErrValidation, http.StatusBadRequest},
	{entity.ErrEmptyCart, http.StatusBadRequest},
	{entity.ErrInvalidStatus, http.StatusBadRequest},
	{entity.ErrUnauthenticated, http.StatusUnauthorized},
	{entity.ErrPermission, http.StatusForbidden},
	{entity.ErrNotFound, http.StatusNotFound},
	{entity.ErrConflict, http.StatusConflict},
}

func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// writeError maps err to a status code and writes {"error": message}. Unclassified
// errors are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
