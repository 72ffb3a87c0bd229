// internal/profile/routes.go

package profile

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers profile routes
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware func(http.Handler) http.Handler) {
	r := router.PathPrefix("/profile").Subrouter()
	r.Use(authMiddleware)

	r.HandleFunc("/location", handler.GetLocation).Methods("GET")
	r.HandleFunc("/location", handler.UpsertLocation).Methods("PUT")

	r.HandleFunc("/blocks", handler.ListBlocked).Methods("GET")
	r.HandleFunc("/blocks/{userId}", handler.Block).Methods("POST")
	r.HandleFunc("/blocks/{userId}", handler.Unblock).Methods("DELETE")

	r.HandleFunc("/interests", handler.ListInterests).Methods("GET")
	r.HandleFunc("/interests", handler.ReplaceInterests).Methods("PUT")

	r.HandleFunc("/avatar", handler.UploadAvatar).Methods("POST")
}
