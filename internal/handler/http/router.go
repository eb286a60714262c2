package http

import (
	"log/slog"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	JWTService jwt.Service,
	logger *slog.Logger,
	allowedOrigins []string,
	payrollHandler PayrollHandler,
	loanHandler LoanHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", IdempotencyKeyHeader},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired)

		r.Route("/payroll", func(r chi.Router) {
			r.Route("/periods", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionPayrollManage)).Post("/", payrollHandler.CreatePeriod)
				r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/", payrollHandler.ListPeriods)

				r.Route("/{id}", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionPayrollManage)).Put("/", payrollHandler.UpdatePeriod)
					r.With(middleware.RequirePermission(user.PermissionPayrollManage)).Patch("/archive", payrollHandler.ArchivePeriod)
					r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/records", payrollHandler.GetPeriodRecords)
					r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/summary", payrollHandler.GetPeriodSummary)
				})
			})

			r.Route("/records/{id}", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionPayrollView))
				r.Get("/payslip", payrollHandler.GetPayslip)
				r.Get("/payslip.pdf", payrollHandler.GetPayslipPDF)
			})

			r.Route("/thirteenth-month", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionPayrollManage)).Post("/", payrollHandler.GenerateThirteenthMonth)
				r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/", payrollHandler.ListThirteenthMonth)
			})

			// Self-service
			r.Route("/me", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionPayrollViewOwn))
				r.Get("/periods", payrollHandler.ListMyPeriods)
				r.Get("/records", payrollHandler.ListMyRecords)
				r.Get("/payslips", payrollHandler.ListMyPayslips)
				r.Get("/payslips/{id}", payrollHandler.GetMyPayslip)
			})
		})

		r.Route("/loans", func(r chi.Router) {
			r.With(middleware.RequirePermission(user.PermissionLoanViewOwn)).Get("/me", loanHandler.ListMyLoans)

			r.Route("/types", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionLoanManage)).Post("/", loanHandler.CreateLoanType)
				r.With(middleware.RequirePermission(user.PermissionLoanView)).Get("/", loanHandler.ListLoanTypes)
				r.With(middleware.RequirePermission(user.PermissionLoanView)).Get("/{id}", loanHandler.GetLoanType)
			})

			r.With(middleware.RequirePermission(user.PermissionLoanManage)).Post("/", loanHandler.CreateLoan)
			r.With(middleware.RequirePermission(user.PermissionLoanView)).Get("/", loanHandler.ListLoans)

			r.Route("/{id}", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionLoanView)).Get("/", loanHandler.GetLoan)
				r.With(middleware.RequirePermission(user.PermissionLoanView)).Get("/schedule", loanHandler.GetLoanSchedule)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLoanManage))
					r.Post("/approve", loanHandler.ApproveLoan)
					r.Post("/cancel", loanHandler.CancelLoan)
					r.Post("/default", loanHandler.MarkLoanDefaulted)
				})
			})
		})
	})
	return r
}
