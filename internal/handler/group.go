package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/PriyaG26/Chat-app/internal/logger"
	"github.com/PriyaG26/Chat-app/internal/middleware"
	"github.com/PriyaG26/Chat-app/internal/model"
	"github.com/PriyaG26/Chat-app/internal/repository"
)

type GroupHandler struct {
	groupRepo *repository.GroupRepository
}

func NewGroupHandler(groupRepo *repository.GroupRepository) *GroupHandler {
	return &GroupHandler{groupRepo: groupRepo}
}

type CreateGroupRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
	ImageURL  string   `json:"image_url"`
}

// CreateGroup creates a group with the caller as admin. The admin is always a
// member, whether or not the request lists them.
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Name == "" || len(req.MemberIDs) == 0 {
		writeError(w, http.StatusBadRequest, "group name and at least one member are required")
		return
	}

	adminID := middleware.GetUserID(r.Context())
	memberIDs := make([]string, 0, len(req.MemberIDs)+1)
	seen := make(map[string]struct{}, len(req.MemberIDs)+1)
	for _, uid := range append(req.MemberIDs, adminID) {
		if _, dup := seen[uid]; dup {
			continue
		}
		seen[uid] = struct{}{}
		memberIDs = append(memberIDs, uid)
	}

	g := &model.Group{
		ID:        uuid.New().String(),
		Name:      req.Name,
		AdminID:   adminID,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.groupRepo.Create(r.Context(), g, memberIDs); err != nil {
		logger.Errorf("create group admin=%s: %v", adminID, err)
		writeError(w, http.StatusInternalServerError, "failed to create group")
		return
	}

	// Reload with members populated so the caller can render immediately.
	created, err := h.groupRepo.GetByID(r.Context(), g.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load group")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListMyGroups returns the caller's groups, members populated.
func (h *GroupHandler) ListMyGroups(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groups, err := h.groupRepo.GroupsByMember(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get groups")
		return
	}
	writeJSON(w, http.StatusOK, groups)
}
