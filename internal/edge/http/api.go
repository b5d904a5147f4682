package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/discoveruz/edge/pkg/httpx"
)

// Response envelopes. Client-facing messages stay generic; anything
// useful to an attacker lives only in server logs.
type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// decodeJSON reads a JSON body with a hard byte ceiling. A body over the
// limit surfaces as 413, anything else malformed as 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpx.WriteJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request too large"})
			return false
		}
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return false
	}
	return true
}

func writeServerError(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "Something went wrong. Please try again later."})
}
