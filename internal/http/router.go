package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/backoffice/internal/http/employee"
	"github.com/MrJamesThe3rd/backoffice/internal/http/export"
	"github.com/MrJamesThe3rd/backoffice/internal/http/importcsv"
	"github.com/MrJamesThe3rd/backoffice/internal/http/matching"
	authmw "github.com/MrJamesThe3rd/backoffice/internal/http/middleware"
	"github.com/MrJamesThe3rd/backoffice/internal/http/monthly"
	"github.com/MrJamesThe3rd/backoffice/internal/http/render"
	"github.com/MrJamesThe3rd/backoffice/internal/http/session"
	"github.com/MrJamesThe3rd/backoffice/internal/http/transaction"
	"github.com/MrJamesThe3rd/backoffice/internal/http/user"
	"github.com/MrJamesThe3rd/backoffice/internal/http/warehouse"
)

type Handlers struct {
	Session      *session.Handler
	Users        *user.Handler
	Transactions *transaction.Handler
	Import       *importcsv.Handler
	Matching     *matching.Handler
	Export       *export.Handler
	Employees    *employee.Handler
	Monthly      *monthly.Handler
	Warehouse    *warehouse.Handler
}

func New(authenticator *authmw.Authenticator, h Handlers, allowedOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json", "multipart/form-data"))

		h.Session.PublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(authenticator.Require)

			h.Session.Routes(r)
			h.Users.Routes(r)
			h.Transactions.Routes(r)
			h.Import.Routes(r)
			h.Matching.Routes(r)
			h.Export.Routes(r)
			h.Employees.Routes(r)
			h.Monthly.Routes(r)
			h.Warehouse.Routes(r)
		})
	})

	return router
}
