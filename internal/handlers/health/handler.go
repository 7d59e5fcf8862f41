package health

import (
	"net/http"
	"unibook/config"
	"unibook/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	cfg *config.Config
}

func New(cfg *config.Config) Handler {
	return Handler{
		cfg: cfg,
	}
}

func (h *Handler) Router(r chi.Router) {
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.Health)
	})
}

// Health reports liveness.
// @Summary Health check
// @Description Report whether the service is up.
// @Tags Health
// @Produce json
// @Success 200 {object} response.Data[map[string]string] "Service status"
// @Router /v1/health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.WithJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"app":    h.cfg.App.Name,
	})
}
