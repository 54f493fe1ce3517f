package handlers

import (
	"bufio"
	"net/http"
	"strings"

	"github.com/AnshRaj112/lighttribe-backend/internal/services"
)

// maxUploadBytes caps image uploads.
const maxUploadBytes = 10 << 20

// UploadImage handles POST /images with a multipart "file" field.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	me, err := viewer(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !h.svc.Images.Enabled() {
		respondError(w, r, services.ErrUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, r, &services.ValidationError{Field: "file", Message: "Failed to parse form"})
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, &services.ValidationError{Field: "file", Message: "No file provided"})
		return
	}
	defer file.Close()

	br := bufio.NewReaderSize(file, 512)
	head, _ := br.Peek(512)
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		respondError(w, r, &services.ValidationError{Field: "file", Message: "File must be an image"})
		return
	}

	img, err := h.svc.Images.Upload(r.Context(), me.ID, br)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, img)
}
