package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PriyaG26/Chat-app/internal/logger"
	"github.com/PriyaG26/Chat-app/internal/middleware"
	"github.com/PriyaG26/Chat-app/internal/repository"
	"github.com/PriyaG26/Chat-app/internal/service"
)

type MessageHandler struct {
	msgRepo   *repository.MessageRepository
	groupRepo *repository.GroupRepository
	ingest    *service.Ingest
}

func NewMessageHandler(msgRepo *repository.MessageRepository, groupRepo *repository.GroupRepository, ingest *service.Ingest) *MessageHandler {
	return &MessageHandler{msgRepo: msgRepo, groupRepo: groupRepo, ingest: ingest}
}

// GetDirectMessages returns the history between the caller and a peer,
// oldest first.
func (h *MessageHandler) GetDirectMessages(w http.ResponseWriter, r *http.Request) {
	peerID := chi.URLParam(r, "userId")
	userID := middleware.GetUserID(r.Context())

	messages, err := h.msgRepo.GetBetween(r.Context(), userID, peerID)
	if err != nil {
		logger.Errorf("get direct messages user=%s peer=%s: %v", userID, peerID, err)
		writeError(w, http.StatusInternalServerError, "failed to get messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// GetGroupMessages returns a group's history, oldest first. Only current
// members may read it.
func (h *MessageHandler) GetGroupMessages(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")
	userID := middleware.GetUserID(r.Context())

	if _, err := h.groupRepo.GetByID(r.Context(), groupID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "group not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get group")
		return
	}
	isMember, err := h.groupRepo.IsMember(r.Context(), groupID, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check membership")
		return
	}
	if !isMember {
		writeError(w, http.StatusForbidden, "not a member of this group")
		return
	}

	messages, err := h.msgRepo.GetByGroup(r.Context(), groupID)
	if err != nil {
		logger.Errorf("get group messages group=%s: %v", groupID, err)
		writeError(w, http.StatusInternalServerError, "failed to get messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// SendDirect persists a direct message and pushes it to connected recipients.
func (h *MessageHandler) SendDirect(w http.ResponseWriter, r *http.Request) {
	receiverID := chi.URLParam(r, "userId")
	senderID := middleware.GetUserID(r.Context())

	var in service.SendInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	m, err := h.ingest.SendDirect(r.Context(), senderID, receiverID, in)
	if err != nil {
		h.writeSendError(w, err, senderID)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// SendGroup persists a group message and fans it out to connected members.
func (h *MessageHandler) SendGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")
	senderID := middleware.GetUserID(r.Context())

	var in service.SendInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	m, err := h.ingest.SendGroup(r.Context(), senderID, groupID, in)
	if err != nil {
		h.writeSendError(w, err, senderID)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// writeSendError maps ingest errors onto the HTTP surface. Unexpected store
// failures are logged but never exposed.
func (h *MessageHandler) writeSendError(w http.ResponseWriter, err error, senderID string) {
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotMember):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		logger.Errorf("send message sender=%s: %v", senderID, err)
		writeError(w, http.StatusInternalServerError, "failed to send message")
	}
}
