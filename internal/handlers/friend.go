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

type FriendHandler struct {
	friendService services.FriendServiceInterface
}

func NewFriendHandler(friendService services.FriendServiceInterface) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

type SendRequestRequest struct {
	RecipientID string `json:"recipient_id"`
}

type FriendListResponse struct {
	Friends []models.Friend `json:"friends"`
}

type PendingRequestsResponse struct {
	Requests []models.PendingRequest `json:"requests"`
}

type UserSearchResponse struct {
	Users []models.UserSearchResult `json:"users"`
}

func (h *FriendHandler) Search(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	results, err := h.friendService.SearchUsers(r.Context(), user.ID, r.URL.Query().Get("q"))
	if err != nil {
		logging.Error("Searching users", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, UserSearchResponse{Users: results})
}

func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	friends, err := h.friendService.ListFriends(r.Context(), user.ID)
	if err != nil {
		logging.Error("Listing friends", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, FriendListResponse{Friends: friends})
}

func (h *FriendHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requests, err := h.friendService.ListPendingRequests(r.Context(), user.ID)
	if err != nil {
		logging.Error("Listing requests", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, PendingRequestsResponse{Requests: requests})
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recipient id")
		return
	}

	request, err := h.friendService.SendRequest(r.Context(), user.ID, recipientID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCannotFriendSelf):
			writeError(w, http.StatusBadRequest, "Cannot send a friend request to yourself")
		case errors.Is(err, services.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, services.ErrDuplicateRequest):
			writeError(w, http.StatusConflict, "A request already exists between these users")
		case errors.Is(err, services.ErrCooldownActive):
			writeError(w, http.StatusTooManyRequests, "A rejected request is still in its waiting period")
		default:
			logging.Error("Sending friend request", map[string]interface{}{"error": err.Error()})
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, request)
}

func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request id")
		return
	}

	request, err := h.friendService.AcceptRequest(r.Context(), user.ID, requestID)
	if err != nil {
		h.writeRespondError(w, err, "Accepting friend request")
		return
	}

	writeJSON(w, http.StatusOK, request)
}

func (h *FriendHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request id")
		return
	}

	if err := h.friendService.RejectRequest(r.Context(), user.ID, requestID); err != nil {
		h.writeRespondError(w, err, "Rejecting friend request")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Request rejected"})
}

func (h *FriendHandler) writeRespondError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, "Friend request not found")
	case errors.Is(err, services.ErrNotRequestRecipient):
		writeError(w, http.StatusForbidden, "Only the recipient can respond to a request")
	case errors.Is(err, services.ErrRequestNotPending):
		writeError(w, http.StatusBadRequest, "Friend request is not pending")
	default:
		logging.Error(action, map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
