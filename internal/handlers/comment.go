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

type CommentHandler struct {
	commentService services.CommentServiceInterface
}

func NewCommentHandler(commentService services.CommentServiceInterface) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

type AddCommentRequest struct {
	Body string `json:"body"`
}

type CommentListResponse struct {
	Comments []models.CommentWithAuthor `json:"comments"`
}

func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
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

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.commentService.Add(r.Context(), user.ID, imageID, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyComment):
			writeError(w, http.StatusBadRequest, "Comment body is required")
		case errors.Is(err, services.ErrImageNotFound):
			writeError(w, http.StatusNotFound, "Image not found")
		default:
			logging.Error("Adding comment", map[string]interface{}{"error": err.Error()})
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
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

	comments, err := h.commentService.ListByImage(r.Context(), user.ID, imageID)
	if err != nil {
		if errors.Is(err, services.ErrImageNotFound) {
			writeError(w, http.StatusNotFound, "Image not found")
			return
		}
		logging.Error("Listing comments", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, CommentListResponse{Comments: comments})
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	commentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid comment id")
		return
	}

	if err := h.commentService.Delete(r.Context(), user.ID, commentID); err != nil {
		switch {
		case errors.Is(err, services.ErrCommentNotFound):
			writeError(w, http.StatusNotFound, "Comment not found")
		case errors.Is(err, services.ErrNotCommentAuthor):
			writeError(w, http.StatusForbidden, "You did not write this comment")
		default:
			logging.Error("Deleting comment", map[string]interface{}{"error": err.Error()})
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted"})
}
