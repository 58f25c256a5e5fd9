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

type ShareHandler struct {
	shareService services.ShareServiceInterface
}

func NewShareHandler(shareService services.ShareServiceInterface) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

type ShareRequest struct {
	TargetID string `json:"target_id"`
}

type SharedImagesResponse struct {
	Images []models.SharedImage `json:"images"`
}

func (h *ShareHandler) ShareImage(w http.ResponseWriter, r *http.Request) {
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

	targetID, ok := h.decodeTarget(w, r)
	if !ok {
		return
	}

	link, err := h.shareService.ShareImage(r.Context(), user.ID, imageID, targetID)
	if err != nil {
		h.writeShareError(w, err, "Sharing image")
		return
	}

	writeJSON(w, http.StatusCreated, link)
}

func (h *ShareHandler) ShareAlbum(w http.ResponseWriter, r *http.Request) {
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

	targetID, ok := h.decodeTarget(w, r)
	if !ok {
		return
	}

	linked, err := h.shareService.ShareAlbum(r.Context(), user.ID, albumID, targetID)
	if err != nil {
		h.writeShareError(w, err, "Sharing album")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"linked": linked})
}

func (h *ShareHandler) ListShared(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	images, err := h.shareService.ListSharedWithUser(r.Context(), user.ID)
	if err != nil {
		logging.Error("Listing shared images", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, SharedImagesResponse{Images: images})
}

func (h *ShareHandler) decodeTarget(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var req ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return uuid.Nil, false
	}

	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid target id")
		return uuid.Nil, false
	}
	return targetID, true
}

func (h *ShareHandler) writeShareError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, services.ErrImageNotFound):
		writeError(w, http.StatusNotFound, "Image not found")
	case errors.Is(err, services.ErrAlbumNotFound):
		writeError(w, http.StatusNotFound, "Album not found")
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrNotImageOwner):
		writeError(w, http.StatusForbidden, "You do not own this image")
	case errors.Is(err, services.ErrNotAlbumOwner):
		writeError(w, http.StatusForbidden, "You do not own this album")
	case errors.Is(err, services.ErrNotFriends):
		writeError(w, http.StatusForbidden, "You can only share with friends")
	case errors.Is(err, services.ErrAlreadyShared):
		writeError(w, http.StatusConflict, "Already shared with this user")
	case errors.Is(err, services.ErrAlbumFull):
		writeError(w, http.StatusBadRequest, "The destination album is full")
	case errors.Is(err, services.ErrEmptyAlbum):
		writeError(w, http.StatusBadRequest, "The album has no images to share")
	default:
		logging.Error(action, map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
