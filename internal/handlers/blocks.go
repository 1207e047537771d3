package handlers

import "net/http"

func (h *DMHandler) Block(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	targetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if err := h.Service.Block(r.Context(), userID, targetID); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *DMHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	targetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if err := h.Service.Unblock(r.Context(), userID, targetID); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DMHandler) BlockedUsers(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	users, err := h.Service.BlockedUsers(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
