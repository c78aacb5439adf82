package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures the debug HTTP routes.
func (h *Handler) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.Health).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/stats", h.Stats).Methods("GET")

	r.Use(requestLogMiddleware)

	return r
}
