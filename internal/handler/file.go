package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PriyaG26/Chat-app/internal/fileserver"
)

type FileHandler struct {
	svc     *fileserver.Service
	maxSize int64
}

func NewFileHandler(svc *fileserver.Service, maxSize int64) *FileHandler {
	return &FileHandler{svc: svc, maxSize: maxSize}
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)
	h.svc.Upload(w, r)
}

func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	h.svc.Serve(w, r, chi.URLParam(r, "filename"))
}
