package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/uptrace/bunrouter"
)

// SetupMuxRoutes registers GET /{entity} and GET /{entity}/meta.
func SetupMuxRoutes(muxRouter *mux.Router, handler *Handler) {
	muxRouter.HandleFunc("/{entity}/meta", func(w http.ResponseWriter, r *http.Request) {
		handler.HandleMeta(w, r, mux.Vars(r)["entity"])
	}).Methods("GET")

	muxRouter.HandleFunc("/{entity}", func(w http.ResponseWriter, r *http.Request) {
		handler.HandleList(w, r, mux.Vars(r)["entity"])
	}).Methods("GET")
}

// SetupBunRouterRoutes registers the same routes on a bunrouter.
func SetupBunRouterRoutes(r *bunrouter.Router, handler *Handler) {
	r.GET("/:entity/meta", func(w http.ResponseWriter, req bunrouter.Request) error {
		handler.HandleMeta(w, req.Request, req.Param("entity"))
		return nil
	})

	r.GET("/:entity", func(w http.ResponseWriter, req bunrouter.Request) error {
		handler.HandleList(w, req.Request, req.Param("entity"))
		return nil
	})
}
