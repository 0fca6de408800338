// Package shared holds transport helpers used by every handler package so
// error envelopes and JSON encoding stay consistent across both parties.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "payrail/pkg/errors"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the `{"error": "..."}` envelope
// with the status derived from its taxonomy code.
func WriteError(w http.ResponseWriter, err error) {
	status := pkgerrors.ToHTTPStatus(pkgerrors.CodeOf(err))
	message := "internal server error"
	var gw pkgerrors.GatewayError
	if errors.As(err, &gw) {
		message = gw.Message
	}
	WriteJSON(w, status, map[string]string{"error": message})
}
