// Package fileserver stores uploaded message attachments (images, voice
// notes) on local disk and serves them back by name.
package fileserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/PriyaG26/Chat-app/internal/logger"
)

// allowedExts: image attachments plus voice-note containers.
var allowedExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".webm": true, ".ogg": true, ".mp3": true, ".m4a": true,
}

type Service struct {
	dir     string
	maxSize int64
}

func New(dir string, maxSize int64) *Service {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Errorf("fileserver mkdir %s: %v", dir, err)
	}
	return &Service{dir: dir, maxSize: maxSize}
}

type UploadResponse struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
}

// Upload accepts a multipart form with a "file" field and writes it under a
// random name, answering with the URL messages should reference.
func (s *Service) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxSize); err != nil {
		writeJSONError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "file field required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExts[ext] {
		writeJSONError(w, http.StatusBadRequest, "unsupported file type")
		return
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		logger.Errorf("fileserver create %s: %v", name, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		logger.Errorf("fileserver write %s: %v", name, err)
		os.Remove(filepath.Join(s.dir, name))
		writeJSONError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(UploadResponse{
		URL:      "/api/files/" + name,
		FileName: header.Filename,
		FileSize: size,
	})
}

// Serve streams a previously uploaded file. name must already be a base name.
func (s *Service) Serve(w http.ResponseWriter, r *http.Request, name string) {
	path := filepath.Join(s.dir, filepath.Base(name))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, path)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}
