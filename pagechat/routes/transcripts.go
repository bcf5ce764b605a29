package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"pagechat/pagechat/config"
	"pagechat/pagechat/controllers"
	"pagechat/pagechat/middlewares"
	"pagechat/pagechat/sources/psql/dao"

	"github.com/go-chi/chi/v5"
)

func handleJSON(handler func(r *http.Request) (any, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, status, err := handler(r)
		if err != nil {
			http.Error(w, err.Error(), status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(res)
	}
}

// TranscriptRoutes exposes the transcript archive read-only.
func TranscriptRoutes(ctrl *controllers.TranscriptsController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.OptionalAuth(cfg))

		// GET /transcripts?limit=N
		gr.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
			limit := 0
			if raw := r.URL.Query().Get("limit"); raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil {
					return nil, http.StatusBadRequest, err
				}
				limit = n
			}
			list, err := ctrl.List(r.Context(), limit)
			if err != nil {
				return nil, http.StatusInternalServerError, err
			}
			return list, http.StatusOK, nil
		}))

		// GET /transcripts/{session_id}
		gr.Get("/{session_id}", handleJSON(func(r *http.Request) (any, int, error) {
			t, err := ctrl.Get(r.Context(), chi.URLParam(r, "session_id"))
			if errors.Is(err, dao.ErrTranscriptNotFound) {
				return nil, http.StatusNotFound, err
			}
			if err != nil {
				return nil, http.StatusInternalServerError, err
			}
			return t, http.StatusOK, nil
		}))
	})
	return r
}
