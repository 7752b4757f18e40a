package handler

import (
	"net/http"

	"github.com/PriyaG26/Chat-app/internal/middleware"
	"github.com/PriyaG26/Chat-app/internal/model"
	"github.com/PriyaG26/Chat-app/internal/repository"
)

type UserHandler struct {
	userRepo *repository.UserRepository
}

func NewUserHandler(userRepo *repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	u, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, u.ToPublic())
}

// GetSidebarUsers returns every user except the caller: the set of possible
// direct-message peers.
func (h *UserHandler) GetSidebarUsers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	users, err := h.userRepo.ListExcept(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get users")
		return
	}
	result := make([]model.UserPublic, 0, len(users))
	for i := range users {
		result = append(result, users[i].ToPublic())
	}
	writeJSON(w, http.StatusOK, result)
}
