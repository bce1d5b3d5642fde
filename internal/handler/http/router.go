package http

import (
	"log/slog"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the non-handler settings of the router.
type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	timesheetHandler TimesheetHandler,
	invoiceHandler InvoiceHandler,
	payrollHandler PayrollHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(middleware.RequireCompany)

			r.Get("/rules", timesheetHandler.Rules)

			r.Route("/timesheets", func(r chi.Router) {
				r.Get("/", timesheetHandler.List)
				r.Get("/summary", timesheetHandler.Summary)
				r.Post("/evaluate", timesheetHandler.Evaluate)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", timesheetHandler.Get)
					r.Post("/check-in", timesheetHandler.CheckIn)
					r.Post("/check-out", timesheetHandler.CheckOut)

					// Manager only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireManager)
						r.Put("/", timesheetHandler.Update)
						r.With(middleware.RequirePermission(user.PermissionTimesheetApprove)).Post("/approve", timesheetHandler.Approve)
						r.With(middleware.RequirePermission(user.PermissionTimesheetApprove)).Post("/reject", timesheetHandler.Reject)
					})
				})
			})

			// Manager only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)

				r.Route("/invoices", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionInvoiceView)).Get("/", invoiceHandler.List)
					r.With(middleware.RequirePermission(user.PermissionInvoiceView)).Get("/{id}", invoiceHandler.Get)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionInvoiceManage))
						r.Post("/preview", invoiceHandler.Preview)
						r.Post("/", invoiceHandler.Create)
						r.Patch("/{id}/status", invoiceHandler.UpdateStatus)
					})
				})

				r.With(middleware.RequirePermission(user.PermissionPayrollView)).Post("/payroll/estimate", payrollHandler.Estimate)
			})
		})
	})

	return r
}
