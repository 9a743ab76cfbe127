package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the health check, the JSON API and the dashboard socket.
func NewRouter(api *API, ws *WSHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/ws/dashboard", ws.ServeWS)
	api.Register(r)
	return r
}
