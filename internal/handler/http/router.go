package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/handler/http/middleware"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(JWTService jwt.Service, runHandler PayrollRunHandler, payslipHandler PayslipHandler, ledgerHandler LedgerHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-core"),
		slog.String("version", "v1.0.0"),
		slog.String("env", "development"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/payroll-runs", func(r chi.Router) {
				r.Get("/", runHandler.ListRuns)
				r.Get("/{id}", runHandler.GetRun)
				r.Get("/{id}/payslips", payslipHandler.ListByRun)

				// Specialists compute, resolve and submit
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(middleware.RoleSpecialist))
					r.Post("/", runHandler.ComputeRun)
					r.Post("/{id}/submit", runHandler.SubmitRun)
				})

				// Finance and managers sign off in order
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(middleware.RoleFinance, middleware.RoleManager))
					r.Post("/{id}/approve", runHandler.ApproveRun)
				})

				// Finance settles the payout
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(middleware.RoleFinance))
					r.Post("/{id}/pay", runHandler.MarkPaid)
				})

				// Managers freeze and own the exceptional paths
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(middleware.RoleManager))
					r.Post("/{id}/freeze", runHandler.FreezeRun)
					r.Post("/{id}/unfreeze", runHandler.UnfreezeRun)
					r.Post("/{id}/void", runHandler.VoidRun)
				})
			})

			r.Route("/irregularities", func(r chi.Router) {
				r.Get("/{id}", runHandler.GetIrregularity)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(middleware.RoleSpecialist))
					r.Post("/{id}/resolve", runHandler.ResolveIrregularity)
				})
			})

			r.Route("/payslips", func(r chi.Router) {
				r.Get("/{id}", payslipHandler.GetPayslip)
				r.Get("/employee/{employeeId}", payslipHandler.ListByEmployee)
			})

			r.Route("/disputes", func(r chi.Router) {
				r.Post("/", ledgerHandler.CreateDispute)
				r.Get("/", ledgerHandler.ListDisputes)
				r.Get("/{id}", ledgerHandler.GetDispute)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(middleware.RoleSpecialist, middleware.RoleManager, middleware.RoleFinance))
					r.Post("/{id}/review", ledgerHandler.ReviewDispute)
				})
			})

			r.Route("/claims", func(r chi.Router) {
				r.Post("/", ledgerHandler.CreateClaim)
				r.Get("/", ledgerHandler.ListClaims)
				r.Get("/{id}", ledgerHandler.GetClaim)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(middleware.RoleFinance))
					r.Post("/{id}/review", ledgerHandler.ReviewClaim)
				})
			})

			r.Route("/refunds", func(r chi.Router) {
				r.Post("/", ledgerHandler.CreateRefund)
				r.Get("/", ledgerHandler.ListRefunds)
				r.Get("/{id}", ledgerHandler.GetRefund)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(middleware.RoleFinance))
					r.Post("/{id}/approve", ledgerHandler.ApproveRefund)
					r.Post("/{id}/pay", ledgerHandler.PayRefund)
				})
			})

			r.Route("/ledger", func(r chi.Router) {
				r.Use(middleware.RequireRole(middleware.RoleFinance, middleware.RoleManager))
				r.Post("/reconcile", ledgerHandler.Reconcile)
				r.Get("/integrity", ledgerHandler.ScanIntegrity)
			})
		})
	})
	return r
}
