package meetups

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRoutes(t *testing.T) {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	passthrough := func(next http.Handler) http.Handler { return next }
	RegisterRoutes(api, NewHandler(nil, nil), passthrough)

	tests := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/meetups"},
		{"POST", "/api/v1/meetups"},
		{"GET", "/api/v1/meetups/mine"},
		{"GET", "/api/v1/meetups/requests/sent"},
		{"GET", "/api/v1/meetups/requests/received"},
		{"POST", "/api/v1/meetups/requests/r1/accept"},
		{"POST", "/api/v1/meetups/requests/r1/decline"},
		{"GET", "/api/v1/meetups/m1"},
		{"PATCH", "/api/v1/meetups/m1"},
		{"DELETE", "/api/v1/meetups/m1"},
		{"POST", "/api/v1/meetups/m1/requests"},
		{"GET", "/api/v1/meetups/m1/requests"},
		{"GET", "/api/v1/meetups/m1/attendees"},
		{"DELETE", "/api/v1/meetups/m1/attendees/me"},
		{"DELETE", "/api/v1/meetups/m1/attendees/u1"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			var match mux.RouteMatch
			assert.True(t, router.Match(req, &match), "no route for %s %s", tt.method, tt.path)
		})
	}
}
