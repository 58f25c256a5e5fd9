package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/TallerAbierto/craftshare/internal/logging"
	"github.com/TallerAbierto/craftshare/internal/models"
	"github.com/TallerAbierto/craftshare/internal/services"
)

type FeedHandler struct {
	feedService services.FeedServiceInterface
}

func NewFeedHandler(feedService services.FeedServiceInterface) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

type FeedResponse struct {
	Items []models.FeedItem `json:"items"`
}

func (h *FeedHandler) Feed(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	items, err := h.feedService.ResolveFeed(r.Context(), user.ID)
	if err != nil {
		logging.Error("Resolving feed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, FeedResponse{Items: items})
}

func (h *FeedHandler) GetImage(w http.ResponseWriter, r *http.Request) {
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

	item, err := h.feedService.GetImage(r.Context(), user.ID, imageID)
	if err != nil {
		if errors.Is(err, services.ErrImageNotFound) {
			writeError(w, http.StatusNotFound, "Image not found")
			return
		}
		logging.Error("Getting image", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, item)
}
