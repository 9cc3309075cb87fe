package http

import (
	"io"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Env            string
	Version        string
	AllowedOrigins []string
	LogLevel       slog.Level
	// LogOutput defaults to stdout.
	LogOutput io.Writer
}

type Handlers struct {
	Payroll  PayrollHandler
	Week     WeekHandler
	Debt     DebtHandler
	Employee EmployeeHandler
}

func NewRouter(jwtService jwt.Service, opts RouterOptions, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	out := opts.LogOutput
	if out == nil {
		out = os.Stdout
	}
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/payrolls", func(r chi.Router) {
				r.Get("/", h.Payroll.ListPayrollRecords)
				r.Post("/", h.Payroll.CreatePayroll)
				r.Post("/preview", h.Payroll.PreviewPayroll)
				r.Get("/summary", h.Payroll.GetWeeklySummary)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Payroll.GetPayrollRecord)
					r.Get("/payments", h.Payroll.ListPayments)
					r.Get("/history", h.Payroll.GetHistory)

					// Manager only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireManager)
						r.Patch("/status", h.Payroll.ChangeStatus)
						r.Post("/payments", h.Payroll.RecordPayment)
					})
				})
			})

			r.Route("/payroll-weeks", func(r chi.Router) {
				r.Post("/", h.Week.CreateWeek)
				r.Get("/resolve", h.Week.ResolveWeek)
				r.Get("/{id}", h.Week.GetWeek)
				r.With(middleware.RequireManager).Patch("/{id}/status", h.Week.ChangeStatus)
			})

			r.Route("/employees", func(r chi.Router) {
				r.With(middleware.RequireManager).Post("/", h.Employee.Create)

				r.Route("/{employeeId}", func(r chi.Router) {
					r.Get("/", h.Employee.GetByID)
					r.Get("/debts", h.Debt.ListDebts)
					r.Get("/debts/outstanding-total", h.Debt.OutstandingTotal)

					// Manager only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireManager)
						r.Patch("/pay-rate", h.Employee.UpdatePayRate)
						r.Post("/inactivate", h.Employee.Inactivate)
						r.Post("/debts/settle", h.Debt.SettleDebts)
					})
				})
			})
		})
	})
	return r
}
