package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/TallerAbierto/craftshare/internal/logging"
	"github.com/TallerAbierto/craftshare/internal/models"
	"github.com/TallerAbierto/craftshare/internal/services"
)

type AlbumHandler struct {
	albumService services.AlbumServiceInterface
	imageService services.ImageServiceInterface
}

func NewAlbumHandler(albumService services.AlbumServiceInterface, imageService services.ImageServiceInterface) *AlbumHandler {
	return &AlbumHandler{
		albumService: albumService,
		imageService: imageService,
	}
}

type CreateAlbumRequest struct {
	Title string `json:"title"`
}

type AlbumListResponse struct {
	Albums []models.AlbumWithCount `json:"albums"`
}

type AddImageRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FilePath    string `json:"file_path"`
	IsPublic    bool   `json:"is_public"`
}

type ImageListResponse struct {
	Images []models.Image `json:"images"`
}

func (h *AlbumHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateAlbumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	album, err := h.albumService.Create(r.Context(), user.ID, req.Title)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateTitle) {
			writeError(w, http.StatusConflict, "An album with this title already exists")
			return
		}
		logging.Error("Creating album", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, album)
}

func (h *AlbumHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	albums, err := h.albumService.ListByOwner(r.Context(), user.ID)
	if err != nil {
		logging.Error("Listing albums", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, AlbumListResponse{Albums: albums})
}

func (h *AlbumHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	albumID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid album id")
		return
	}

	if err := h.albumService.Delete(r.Context(), user.ID, albumID); err != nil {
		h.writeAlbumError(w, err, "Deleting album")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Album deleted"})
}

func (h *AlbumHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	albumID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid album id")
		return
	}

	var req AddImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.FilePath == "" {
		writeError(w, http.StatusBadRequest, "A file reference is required")
		return
	}

	image, err := h.imageService.Add(r.Context(), user.ID, models.AddImageParams{
		AlbumID:     albumID,
		Title:       req.Title,
		Description: req.Description,
		FilePath:    req.FilePath,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		if errors.Is(err, services.ErrAlbumFull) {
			writeError(w, http.StatusBadRequest, "Album is full")
			return
		}
		h.writeAlbumError(w, err, "Adding image")
		return
	}

	writeJSON(w, http.StatusCreated, image)
}

func (h *AlbumHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	albumID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid album id")
		return
	}

	images, err := h.imageService.ListByAlbum(r.Context(), user.ID, albumID)
	if err != nil {
		h.writeAlbumError(w, err, "Listing album images")
		return
	}

	writeJSON(w, http.StatusOK, ImageListResponse{Images: images})
}

func (h *AlbumHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	imageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid image id")
		return
	}

	if err := h.imageService.Delete(r.Context(), user.ID, imageID); err != nil {
		switch {
		case errors.Is(err, services.ErrImageNotFound):
			writeError(w, http.StatusNotFound, "Image not found")
		case errors.Is(err, services.ErrNotImageOwner):
			writeError(w, http.StatusForbidden, "You do not own this image")
		default:
			logging.Error("Deleting image", map[string]interface{}{"error": err.Error()})
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Image deleted"})
}

func (h *AlbumHandler) writeAlbumError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, services.ErrAlbumNotFound):
		writeError(w, http.StatusNotFound, "Album not found")
	case errors.Is(err, services.ErrNotAlbumOwner):
		writeError(w, http.StatusForbidden, "You do not own this album")
	default:
		logging.Error(action, map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
