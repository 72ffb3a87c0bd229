// internal/people/handlers.go

package people

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/nearmeet/nearmeet-backend/internal/auth"
	"github.com/nearmeet/nearmeet-backend/internal/common/utils"
)

// Handler handles people discovery HTTP requests
type Handler struct {
	service Service
	metrics *Metrics
}

// NewHandler creates a new people handler
func NewHandler(service Service, metrics *Metrics) *Handler {
	return &Handler{
		service: service,
		metrics: metrics,
	}
}

// Discover handles GET /api/v1/people
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		h.count("unauthorized")
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	params, err := h.parseParams(r)
	if err != nil {
		h.count("bad_request")
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	params.ViewerID = userID

	people, err := h.service.Discover(r.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, ErrLocationRequired):
			h.count("no_location")
			utils.RespondWithError(w, http.StatusBadRequest, "Set your location before browsing people nearby")
		case errors.Is(err, ErrInvalidFilter):
			h.count("bad_request")
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.count("error")
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load people")
		}
		return
	}

	h.count("success")
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"people": people,
		"page":   params.Page,
	})
}

func (h *Handler) count(status string) {
	if h.metrics != nil {
		h.metrics.DiscoverRequests.WithLabelValues(status).Inc()
	}
}

func (h *Handler) parseParams(r *http.Request) (DiscoverParams, error) {
	q := r.URL.Query()
	params := DiscoverParams{Page: 1}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return params, errors.New("page must be a positive integer")
		}
		params.Page = page
	}

	// maxDistanceKm is the documented name; radiusKm kept as an alias
	radiusStr := q.Get("maxDistanceKm")
	if radiusStr == "" {
		radiusStr = q.Get("radiusKm")
	}
	if radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius <= 0 {
			return params, errors.New("maxDistanceKm must be a positive number")
		}
		params.RadiusKm = radius
	}

	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr != "" || lngStr != "" {
		if latStr == "" || lngStr == "" {
			return params, errors.New("lat and lng must be supplied together")
		}
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil || lat < -90 || lat > 90 {
			return params, errors.New("lat must be between -90 and 90")
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil || lng < -180 || lng > 180 {
			return params, errors.New("lng must be between -180 and 180")
		}
		params.Center = &Center{Lat: lat, Lng: lng}
	}

	if v := q.Get("gender"); v != "" {
		gender, ok := ParseGender(strings.ToLower(v))
		if !ok {
			return params, errors.New("gender must be one of male, female, other")
		}
		params.Filters.Gender = &gender
	}

	if v := q.Get("ageMin"); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil {
			return params, errors.New("ageMin must be an integer")
		}
		params.Filters.AgeMin = &age
	}
	if v := q.Get("ageMax"); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil {
			return params, errors.New("ageMax must be an integer")
		}
		params.Filters.AgeMax = &age
	}

	if v := q.Get("interestIds"); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil {
				return params, errors.New("interestIds must be a comma-separated list of integers")
			}
			params.Filters.InterestIDs = append(params.Filters.InterestIDs, id)
		}
	}

	return params, nil
}
