package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/scoutchat/scout/internal/credential"
	"github.com/scoutchat/scout/internal/log"
)

// maxKeyBodyBytes bounds credential request bodies.
const maxKeyBodyBytes = 4 << 10

// keysHandler manages per-session credentials.
type keysHandler struct {
	logger log.Logger
}

// setKeyRequest is the body for POST /api/v1/keys.
type setKeyRequest struct {
	Provider string `json:"provider"` // "openai" | "tavily"
	Key      string `json:"key"`
}

// setKey validates and stores one provider key on the caller's session.
func (h *keysHandler) setKey(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "session_error", "session not in context")
		return
	}

	var req setKeyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxKeyBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be JSON")
		return
	}

	err := s.SetCredential(credential.Provider(req.Provider), req.Key)
	switch {
	case errors.Is(err, credential.ErrUnknownProvider):
		writeError(w, http.StatusBadRequest, "unknown_provider", err.Error())
		return
	case errors.Is(err, credential.ErrInvalidFormat):
		// The key itself never goes in the log or the response.
		h.logger.Info("credential rejected", "provider", req.Provider)
		writeError(w, http.StatusBadRequest, "invalid_credential_format", err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", "storing credential failed")
		return
	}

	h.logger.Info("credential connected", "provider", req.Provider)
	writeJSON(w, http.StatusOK, s.Status())
}

// reset clears both keys, the agent, and the conversation history.
func (h *keysHandler) reset(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "session_error", "session not in context")
		return
	}

	s.Reset()
	writeJSON(w, http.StatusOK, s.Status())
}

// status reports connection state without exposing key material.
func (h *keysHandler) status(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "session_error", "session not in context")
		return
	}

	writeJSON(w, http.StatusOK, s.Status())
}
