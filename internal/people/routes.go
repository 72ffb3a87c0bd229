// internal/people/routes.go

package people

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers people discovery routes
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware func(http.Handler) http.Handler) {
	r := router.PathPrefix("/people").Subrouter()
	r.Use(authMiddleware)

	r.HandleFunc("", handler.Discover).Methods("GET")
}
