package errors

import (
	"encoding/json"
	"net/http"
)

// WriteError maps any error onto the wire format. Non-AppError causes
// surface as an opaque 500; storage-layer detail never reaches the
// caller.
func WriteError(w http.ResponseWriter, err error) {
	appErr := AsAppError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())

	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}
