// internal/meetups/handlers.go

package meetups

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nearmeet/nearmeet-backend/internal/auth"
	"github.com/nearmeet/nearmeet-backend/internal/common/utils"
)

// Handler handles meetup HTTP requests
type Handler struct {
	service Service
	metrics *Metrics
}

// NewHandler creates a new meetups handler
func NewHandler(service Service, metrics *Metrics) *Handler {
	return &Handler{
		service: service,
		metrics: metrics,
	}
}

// Discover handles GET /api/v1/meetups
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	q := r.URL.Query()

	windowStr := q.Get("window")
	if windowStr == "" {
		windowStr = string(WindowUpcoming)
	}
	window, err := ParseWindowKind(windowStr)
	if err != nil {
		h.countDiscover(windowStr, "bad_request")
		utils.RespondWithError(w, http.StatusBadRequest, "window must be one of upcoming, this-week, this-weekend")
		return
	}

	params := DiscoverParams{ViewerID: userID, Window: window, Page: 1}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			h.countDiscover(windowStr, "bad_request")
			utils.RespondWithError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		params.Page = page
	}

	if v := q.Get("city"); v != "" {
		params.City = &v
	}
	if v := q.Get("activityId"); v != "" {
		activityID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || activityID < 1 {
			h.countDiscover(windowStr, "bad_request")
			utils.RespondWithError(w, http.StatusBadRequest, "activityId must be a positive integer")
			return
		}
		params.ActivityID = &activityID
	}

	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr != "" && lngStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			h.countDiscover(windowStr, "bad_request")
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid coordinates")
			return
		}
		params.Lat, params.Lng = &lat, &lng
	}

	meetupsList, err := h.service.Discover(r.Context(), params)
	if err != nil {
		h.countDiscover(windowStr, "error")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load meetups")
		return
	}

	h.countDiscover(windowStr, "success")
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"meetups": meetupsList,
		"window":  window,
		"page":    params.Page,
	})
}

// Get handles GET /api/v1/meetups/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	meetup, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, meetup)
}

// ListMine handles GET /api/v1/meetups/mine
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	page := parsePage(r)
	includePast := r.URL.Query().Get("includePast") == "true"

	hosting, err := h.service.ListHosting(r.Context(), userID, page, includePast)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load your meetups")
		return
	}
	joined, err := h.service.ListJoined(r.Context(), userID, page)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load your meetups")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"hosting": hosting,
		"joined":  joined,
		"page":    page,
	})
}

// Create handles POST /api/v1/meetups
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateMeetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	meetup, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create meetup")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, meetup)
}

// Update handles PATCH /api/v1/meetups/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateMeetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	meetup, err := h.service.Update(r.Context(), userID, mux.Vars(r)["id"], req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, meetup)
}

// Delete handles DELETE /api/v1/meetups/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.service.Delete(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.MessageResponse("Meetup deleted"))
}

// RequestToJoin handles POST /api/v1/meetups/{id}/requests
func (h *Handler) RequestToJoin(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req JoinMeetupRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	jr, err := h.service.RequestToJoin(r.Context(), userID, mux.Vars(r)["id"], req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, jr)
}

// ListRequests handles GET /api/v1/meetups/{id}/requests (host only)
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	requests, err := h.service.ListRequests(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

// ListSentRequests handles GET /api/v1/meetups/requests/sent
func (h *Handler) ListSentRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	page := parsePage(r)
	requests, err := h.service.ListSentRequests(r.Context(), userID, page)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load sent requests")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"requests": requests, "page": page})
}

// ListReceivedRequests handles GET /api/v1/meetups/requests/received
func (h *Handler) ListReceivedRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	page := parsePage(r)
	requests, err := h.service.ListReceivedRequests(r.Context(), userID, page)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load received requests")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"requests": requests, "page": page})
}

// ListAttendees handles GET /api/v1/meetups/{id}/attendees
func (h *Handler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.GetUserIDFromContext(r.Context()); !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	attendees, err := h.service.ListAttendees(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"attendees": attendees})
}

// JudgeRequest handles POST /api/v1/meetups/requests/{requestId}/accept and /decline
func (h *Handler) JudgeRequest(accept bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if err := h.service.JudgeRequest(r.Context(), userID, mux.Vars(r)["requestId"], accept); err != nil {
			h.respondServiceError(w, err)
			return
		}

		if accept {
			utils.RespondWithJSON(w, http.StatusOK, utils.MessageResponse("Request accepted"))
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.MessageResponse("Request declined"))
	}
}

// Leave handles DELETE /api/v1/meetups/{id}/attendees/me
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.service.Leave(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.MessageResponse("Left the meetup"))
}

// RemoveParticipant handles DELETE /api/v1/meetups/{id}/attendees/{userId} (host only)
func (h *Handler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	if err := h.service.RemoveParticipant(r.Context(), userID, vars["id"], vars["userId"]); err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.MessageResponse("Participant removed"))
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMeetupNotFound), errors.Is(err, ErrRequestNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotHost):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrOwnMeetup), errors.Is(err, ErrAlreadyRequested), errors.Is(err, ErrMeetupFull), errors.Is(err, ErrMeetupClosed):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrDailyQuotaReached):
		utils.RespondWithError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, ErrInvalidWindow):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
	}
}

func (h *Handler) countDiscover(window, status string) {
	if h.metrics != nil {
		h.metrics.DiscoverRequests.WithLabelValues(window, status).Inc()
	}
}

func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
