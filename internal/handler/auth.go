package handler

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/PriyaG26/Chat-app/internal/logger"
	"github.com/PriyaG26/Chat-app/internal/middleware"
	"github.com/PriyaG26/Chat-app/internal/model"
	"github.com/PriyaG26/Chat-app/internal/repository"
	"github.com/PriyaG26/Chat-app/internal/storage"
)

type AuthHandler struct {
	userRepo    *repository.UserRepository
	sessionRepo *repository.SessionRepository
	secrets     storage.SessionSecretStore
}

func NewAuthHandler(userRepo *repository.UserRepository, sessionRepo *repository.SessionRepository, secrets storage.SessionSecretStore) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, sessionRepo: sessionRepo, secrets: secrets}
}

type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceName string `json:"device_name"`
}

// SessionResponse carries the session secret exactly once, at issue time.
// Clients sign every later request with it; the server stores only its hash.
type SessionResponse struct {
	SessionID     string           `json:"session_id"`
	SessionSecret string           `json:"session_secret"`
	User          model.UserPublic `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FullName == "" || req.Email == "" || len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "full name, email and a password of at least 6 characters are required")
		return
	}

	if _, err := h.userRepo.GetByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	now := time.Now().UTC()
	u := &model.User{
		ID:           uuid.New().String(),
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		LastSeenAt:   now,
		CreatedAt:    now,
	}
	if err := h.userRepo.Create(r.Context(), u); err != nil {
		logger.Errorf("register create user: %v", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	resp, err := h.issueSession(r, u, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	u, err := h.userRepo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		// Same response for unknown email and wrong password.
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	resp, err := h.issueSession(r, u, req.DeviceName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	if sessionID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.sessionRepo.Revoke(r.Context(), sessionID); err != nil {
		logger.Errorf("logout revoke session=%s: %v", middleware.MaskSessionID(sessionID), err)
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	if err := h.secrets.DeleteSessionSecret(r.Context(), sessionID); err != nil {
		logger.Errorf("logout delete secret session=%s: %v", middleware.MaskSessionID(sessionID), err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AuthHandler) issueSession(r *http.Request, u *model.User, deviceName string) (*SessionResponse, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	secretB64 := base64.StdEncoding.EncodeToString(secret)
	secretHash := sha256.Sum256(secret)

	now := time.Now().UTC()
	session := &model.Session{
		ID:         uuid.New().String(),
		UserID:     u.ID,
		DeviceName: deviceName,
		SecretHash: hex.EncodeToString(secretHash[:]),
		LastSeenAt: now,
		CreatedAt:  now,
	}
	if err := h.sessionRepo.Create(r.Context(), session); err != nil {
		logger.Errorf("issue session user=%s: %v", u.ID, err)
		return nil, err
	}
	if err := h.secrets.SetSessionSecret(r.Context(), session.ID, secretB64); err != nil {
		logger.Errorf("store session secret session=%s: %v", middleware.MaskSessionID(session.ID), err)
		return nil, err
	}
	return &SessionResponse{
		SessionID:     session.ID,
		SessionSecret: secretB64,
		User:          u.ToPublic(),
	}, nil
}
