package handlers

import (
	"net/http"

	"github.com/gizetz/gbairai/internal/apperr"
	"github.com/gizetz/gbairai/internal/dm"
	"github.com/gizetz/gbairai/internal/models"
)

// sendMessageRequest accepts the reply pointer as reply_to_id or replyToId.
type sendMessageRequest struct {
	Content        string             `json:"content"`
	Kind           models.MessageKind `json:"kind"`
	ReplyToID      *int64             `json:"reply_to_id"`
	ReplyToIDCamel *int64             `json:"replyToId"`
}

func (req sendMessageRequest) replyTo() (*int64, error) {
	switch {
	case req.ReplyToIDCamel == nil:
		return req.ReplyToID, nil
	case req.ReplyToID != nil && *req.ReplyToID != *req.ReplyToIDCamel:
		return nil, apperr.Validation("reply_to_id and replyToId disagree")
	default:
		return req.ReplyToIDCamel, nil
	}
}

// reviewed reports whether content of this kind goes through the content
// policy. Image, audio and file payloads are passed through untouched.
func (req sendMessageRequest) reviewed() bool {
	return req.Kind == "" || req.Kind == models.KindText
}

func (h *DMHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
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
	msgs, err := h.Service.Messages(r.Context(), userID, conversationID)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *DMHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
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
	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	replyToID, err := req.replyTo()
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	content := req.Content
	if h.Policy != nil && req.reviewed() {
		if content, err = h.Policy.Review(req.Content); err != nil {
			writeError(w, r, h.Logger, err)
			return
		}
	}

	msg, err := h.Service.Send(r.Context(), dm.AppendInput{
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        content,
		Kind:           req.Kind,
		ReplyToID:      replyToID,
	})
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *DMHandler) DeleteMessageForMe(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	messageID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if err := h.Service.DeleteMessageForMe(r.Context(), userID, messageID); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteMessage tombstones the message for both participants.
func (h *DMHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	messageID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if err := h.Service.DeleteMessageForEveryone(r.Context(), userID, messageID); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
