package rest

import (
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *HTTPServer) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Get("/crypto", s.publicKey)
	r.Post("/crypto", s.encrypt)
	r.Post("/sign-in", s.signIn)
	r.Post("/refresh", s.refresh)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(RequireRoles(models.RoleManagerMajor, models.RoleManagerMinor, models.RoleUser))

		r.Post("/sign-out", s.signOut)
		r.Get("/info", s.info)
		r.Put("/info", s.updateInfo)
		r.Delete("/info", s.withdraw)
		r.Put("/password", s.changePassword)
	})

	return r
}
