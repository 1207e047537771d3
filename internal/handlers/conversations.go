package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gizetz/gbairai/internal/apperr"
	"github.com/gizetz/gbairai/internal/dm"
	"github.com/gizetz/gbairai/internal/moderation"
)

type DMHandler struct {
	Service *dm.Service
	Policy  moderation.Policy
	Logger  *slog.Logger
}

// createConversationRequest accepts both participant_id and participantId.
type createConversationRequest struct {
	ParticipantID      int64 `json:"participant_id"`
	ParticipantIDCamel int64 `json:"participantId"`
}

func (req createConversationRequest) participant() (int64, error) {
	id := req.ParticipantID
	if req.ParticipantIDCamel != 0 {
		if id != 0 && id != req.ParticipantIDCamel {
			return 0, apperr.Validation("participant_id and participantId disagree")
		}
		id = req.ParticipantIDCamel
	}
	if id <= 0 {
		return 0, apperr.Validation("participant_id is required")
	}
	return id, nil
}

func (h *DMHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	var req createConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	participantID, err := req.participant()
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	conv, err := h.Service.StartConversation(r.Context(), userID, participantID)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"conversation_id": conv.ID})
}

func (h *DMHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	summaries, err := h.Service.Inbox(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *DMHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	conversationID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	summary, err := h.Service.Conversation(r.Context(), userID, conversationID)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// DeleteConversation hides the conversation for the caller. The other
// participant keeps it.
func (h *DMHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	conversationID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if err := h.Service.DeleteConversation(r.Context(), userID, conversationID); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
