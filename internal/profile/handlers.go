// internal/profile/handlers.go

package profile

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nearmeet/nearmeet-backend/internal/auth"
	"github.com/nearmeet/nearmeet-backend/internal/common/utils"
)

// Handler handles profile HTTP requests
type Handler struct {
	service Service
}

// NewHandler creates a new profile handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetLocation handles GET /api/v1/profile/location
func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	loc, err := h.service.GetLocation(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load location")
		return
	}
	if loc == nil {
		utils.RespondWithError(w, http.StatusNotFound, "No location set")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, loc)
}

// UpsertLocation handles PUT /api/v1/profile/location
func (h *Handler) UpsertLocation(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpsertLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	loc, err := h.service.UpsertLocation(r.Context(), userID, req)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save location")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, loc)
}

// Block handles POST /api/v1/profile/blocks/{userId}
func (h *Handler) Block(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	err := h.service.Block(r.Context(), userID, mux.Vars(r)["userId"])
	switch {
	case errors.Is(err, ErrSelfBlock):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUserNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case err != nil:
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to block user")
	default:
		utils.RespondWithJSON(w, http.StatusOK, utils.MessageResponse("User blocked"))
	}
}

// Unblock handles DELETE /api/v1/profile/blocks/{userId}
func (h *Handler) Unblock(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.service.Unblock(r.Context(), userID, mux.Vars(r)["userId"]); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to unblock user")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.MessageResponse("User unblocked"))
}

// ListBlocked handles GET /api/v1/profile/blocks
func (h *Handler) ListBlocked(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	blocked, err := h.service.ListBlocked(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load block list")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"blocked": blocked})
}

// ReplaceInterests handles PUT /api/v1/profile/interests
func (h *Handler) ReplaceInterests(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ReplaceInterestsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	interests, err := h.service.ReplaceInterests(r.Context(), userID, req)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save interests")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"interests": interests})
}

// ListInterests handles GET /api/v1/profile/interests
func (h *Handler) ListInterests(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	interests, err := h.service.ListInterests(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load interests")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"interests": interests})
}

// UploadAvatar handles POST /api/v1/profile/avatar
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes+1)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		utils.RespondWithError(w, http.StatusRequestEntityTooLarge, ErrUploadTooLarge.Error())
		return
	}

	photo, err := h.service.UploadAvatar(r.Context(), userID, r.Header.Get("Content-Type"), data)
	switch {
	case errors.Is(err, ErrUploadTooLarge):
		utils.RespondWithError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, ErrUnsupportedImage):
		utils.RespondWithError(w, http.StatusUnsupportedMediaType, err.Error())
	case err != nil:
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to upload avatar")
	default:
		utils.RespondWithJSON(w, http.StatusCreated, photo)
	}
}
