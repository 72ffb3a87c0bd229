// internal/meetups/routes.go

package meetups

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers meetup routes
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware func(http.Handler) http.Handler) {
	r := router.PathPrefix("/meetups").Subrouter()
	r.Use(authMiddleware)

	r.HandleFunc("", handler.Discover).Methods("GET")
	r.HandleFunc("", handler.Create).Methods("POST")
	r.HandleFunc("/mine", handler.ListMine).Methods("GET")

	r.HandleFunc("/requests/sent", handler.ListSentRequests).Methods("GET")
	r.HandleFunc("/requests/received", handler.ListReceivedRequests).Methods("GET")
	r.HandleFunc("/requests/{requestId}/accept", handler.JudgeRequest(true)).Methods("POST")
	r.HandleFunc("/requests/{requestId}/decline", handler.JudgeRequest(false)).Methods("POST")

	r.HandleFunc("/{id}", handler.Get).Methods("GET")
	r.HandleFunc("/{id}", handler.Update).Methods("PATCH")
	r.HandleFunc("/{id}", handler.Delete).Methods("DELETE")
	r.HandleFunc("/{id}/requests", handler.RequestToJoin).Methods("POST")
	r.HandleFunc("/{id}/requests", handler.ListRequests).Methods("GET")
	r.HandleFunc("/{id}/attendees", handler.ListAttendees).Methods("GET")
	r.HandleFunc("/{id}/attendees/me", handler.Leave).Methods("DELETE")
	r.HandleFunc("/{id}/attendees/{userId}", handler.RemoveParticipant).Methods("DELETE")
}
