package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medusa-chatbot/server/internal/commerce"
	errx "github.com/medusa-chatbot/server/internal/core/error"
)

type errorResponse struct {
	Error string `json:"detail"`
}

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondFailure maps domain errors to their HTTP status; anything untyped
// becomes a 500 with a safe message.
func respondFailure(w http.ResponseWriter, err error) {
	var e *errx.Error
	if errors.As(err, &e) {
		respondError(w, e.Status, e.Message)
		return
	}
	respondError(w, http.StatusInternalServerError, errx.SystemErrorMessage)
}

// credsFromQuery reads the per-customer auth material the direct endpoints
// accept as query parameters.
func credsFromQuery(r *http.Request) commerce.Credentials {
	return commerce.Credentials{
		AuthToken:      r.URL.Query().Get("auth_token"),
		PublishableKey: r.URL.Query().Get("x_publishable_api_key"),
	}
}
