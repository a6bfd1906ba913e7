package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/scoutchat/scout/internal/agent"
	"github.com/scoutchat/scout/internal/log"
	"github.com/scoutchat/scout/internal/session"
)

// maxChatBodyBytes bounds chat request bodies.
const maxChatBodyBytes = 64 << 10

// chatHandler runs conversational turns against the caller's session.
type chatHandler struct {
	logger log.Logger
}

// chatRequest is the body for POST /api/v1/chat.
type chatRequest struct {
	Message string `json:"message"`
}

// chatResponse is the reply for a completed turn.
type chatResponse struct {
	Reply        string `json:"reply"`
	MessageCount int    `json:"message_count"`
}

// send runs one turn: the new message plus the stored history go to the
// agent, and the completed exchange is appended to the transcript.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "session_error", "session not in context")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be JSON")
		return
	}

	reply, err := s.Submit(r.Context(), req.Message)
	if err != nil {
		h.writeTurnError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Reply:        reply,
		MessageCount: s.Status().MessageCount,
	})
}

// writeTurnError maps turn failures to the API error taxonomy.
func (h *chatHandler) writeTurnError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, "empty_message", "message must not be empty")
	case errors.Is(err, session.ErrNotConnected):
		writeError(w, http.StatusConflict, "not_connected", session.ErrNotConnected.Error())
	case errors.Is(err, agent.ErrBuild):
		h.logger.Warn("agent build failed", "error", err)
		writeError(w, http.StatusBadGateway, "agent_build_failed", "could not build agent from the provided keys")
	case errors.Is(err, session.ErrTurnTimeout):
		writeError(w, http.StatusGatewayTimeout, "turn_timeout", err.Error())
	default:
		h.logger.Error("turn failed", "error", err)
		writeError(w, http.StatusBadGateway, "turn_failed", "the model could not complete the turn")
	}
}

// history returns the rendered transcript for the caller's session.
func (h *chatHandler) history(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "session_error", "session not in context")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Messages []session.Entry `json:"messages"`
	}{Messages: s.History()})
}
