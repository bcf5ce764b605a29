package routes

import (
	"net/http"

	"pagechat/pagechat/config"
	"pagechat/pagechat/controllers"
	"pagechat/pagechat/middlewares"
	"pagechat/pagechat/utils/logging"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RelayRoutes mounts the websocket endpoint. Without ALLOWED_ORIGINS any
// origin may connect, which the extension's chrome-extension:// origin needs.
func RelayRoutes(ctrl *controllers.RelayController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.OptionalAuth(cfg))
		gr.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			opts := &websocket.AcceptOptions{InsecureSkipVerify: len(cfg.AllowedOrigins) == 0}
			if len(cfg.AllowedOrigins) > 0 {
				opts.OriginPatterns = cfg.AllowedOrigins
			}
			conn, err := websocket.Accept(w, r, opts)
			if err != nil {
				logging.ErrorLogger.Error("websocket accept error", zap.Error(err))
				return
			}
			ctrl.Serve(r.Context(), conn)
		})
	})
	return r
}
