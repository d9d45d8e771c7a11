package shared

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"orgaudit/internal/domain/org"
	"orgaudit/internal/platform/csvimport"
	"orgaudit/internal/transport/http/api"
)

// ReadEmployeeSet parses a CSV request body. On failure the response has
// already been written and ok is false.
func ReadEmployeeSet(w http.ResponseWriter, r *http.Request, requestID string) (set *org.EmployeeSet, raw []byte, ok bool) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
			return nil, nil, false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "failed to read request body", requestID)
		return nil, nil, false
	}

	set, err = csvimport.ParseBytes(raw)
	if err != nil {
		FailCSV(w, err, requestID)
		return nil, nil, false
	}
	return set, raw, true
}

func FailCSV(w http.ResponseWriter, err error, requestID string) {
	var parseErr *csvimport.ParseError
	if errors.As(err, &parseErr) {
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "invalid_csv", parseErr.Msg, map[string]any{"line": parseErr.Line}, requestID)
		return
	}
	if errors.Is(err, org.ErrInvalidEmployee) || errors.Is(err, org.ErrDuplicateEmployee) {
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_csv", err.Error(), requestID)
		return
	}
	slog.Error("csv import failed", "requestId", requestID, "err", err)
	api.Fail(w, http.StatusInternalServerError, "import_failed", "failed to import employees", requestID)
}
