package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AllowedOrigins []string
	Env            string
	LogLevel       slog.Level
}

type Handlers struct {
	Leave      LeaveHandler
	Overtime   OvertimeHandler
	Loan       LoanHandler
	Payroll    PayrollHandler
	Training   TrainingHandler
	Evaluation EvaluationHandler
	Document   DocumentHandler
	Visitor    VisitorHandler
	Onboarding OnboardingHandler
	Goal       GoalHandler
	Department DepartmentHandler
	Competency CompetencyHandler
	Employee   EmployeeHandler
}

func NewRouter(cfg RouterConfig, jwtService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-lifecycle"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
		r.Use(middleware.AuthRequired)
		r.Use(middleware.RequireCompany)

		r.Route("/leave", func(r chi.Router) {
			r.Get("/balances", h.Leave.GetBalances)
			r.With(middleware.RequireManager).Post("/balances/adjust", h.Leave.AdjustBalance)

			r.Route("/applications", func(r chi.Router) {
				r.Get("/", h.Leave.ListApplications)
				r.Post("/", h.Leave.CreateApplication)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Leave.GetApplication)
					r.Put("/", h.Leave.UpdateDraft)
					r.Post("/submit", h.Leave.Submit)
					r.Post("/approve", h.Leave.Approve)
					r.Post("/reject", h.Leave.Reject)
					r.Post("/cancel", h.Leave.Cancel)
				})
			})
		})

		r.Route("/overtime", func(r chi.Router) {
			r.Get("/", h.Overtime.List)
			r.Post("/", h.Overtime.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Overtime.Get)
				r.Post("/approve", h.Overtime.Approve)
				r.Post("/reject", h.Overtime.Reject)
				r.Post("/cancel", h.Overtime.Cancel)
			})
		})

		r.Route("/loans", func(r chi.Router) {
			r.Get("/", h.Loan.ListLoans)
			r.Route("/applications", func(r chi.Router) {
				r.Post("/", h.Loan.SubmitApplication)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Loan.GetApplication)
					r.Post("/cancel", h.Loan.CancelApplication)

					// Manager only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireManager)
						r.Post("/approve", h.Loan.ApproveApplication)
						r.Post("/reject", h.Loan.RejectApplication)
					})
				})
			})
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Loan.GetLoan)

				// Manager only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Post("/payments", h.Loan.RecordPayment)
					r.Put("/status", h.Loan.ChangeLoanStatus)
				})
			})
		})

		// Manager only
		r.Route("/payroll", func(r chi.Router) {
			r.Use(middleware.RequireManager)
			r.Route("/periods", func(r chi.Router) {
				r.Get("/", h.Payroll.ListPeriods)
				r.Post("/", h.Payroll.CreatePeriod)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Payroll.GetPeriod)
					r.Put("/status", h.Payroll.ChangePeriodStatus)
					r.Post("/entries", h.Payroll.CreateEntry)
				})
			})
			r.Route("/entries/{entryID}", func(r chi.Router) {
				r.Put("/", h.Payroll.UpdateEntryAmounts)
				r.Put("/status", h.Payroll.ChangeEntryStatus)
			})
		})

		r.Route("/training", func(r chi.Router) {
			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", h.Training.ListSessions)
				r.With(middleware.RequireManager).Post("/", h.Training.CreateSession)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Training.GetSession)
					r.With(middleware.RequireManager).Put("/status", h.Training.ChangeSessionStatus)
					r.Post("/enrollments", h.Training.Enroll)
				})
			})
			r.Route("/enrollments/{enrollmentID}", func(r chi.Router) {
				r.Post("/cancel", h.Training.CancelEnrollment)
				r.With(middleware.RequireManager).Post("/complete", h.Training.CompleteEnrollment)
			})
		})

		r.Route("/evaluations", func(r chi.Router) {
			r.Get("/", h.Evaluation.List)
			r.With(middleware.RequireManager).Post("/", h.Evaluation.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Evaluation.Get)
				r.With(middleware.RequireManager).Put("/", h.Evaluation.Update)
				r.Put("/status", h.Evaluation.ChangeStatus)
			})
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", h.Document.List)
			r.Post("/", h.Document.Create)
			r.Get("/{id}", h.Document.Get)
			r.Put("/{id}/status", h.Document.ChangeStatus)
		})

		r.Route("/visits", func(r chi.Router) {
			r.Get("/", h.Visitor.List)
			r.Post("/", h.Visitor.Create)
			r.Get("/{id}", h.Visitor.Get)
			r.Put("/{id}/status", h.Visitor.ChangeStatus)
		})

		r.Route("/onboarding", func(r chi.Router) {
			r.Get("/tasks", h.Onboarding.ListTasks)
			r.With(middleware.RequireManager).Post("/tasks", h.Onboarding.CreateTask)
			r.Put("/tasks/{id}/status", h.Onboarding.ChangeStatus)
			r.Get("/progress", h.Onboarding.Progress)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", h.Goal.ListByEmployee)
			r.Post("/", h.Goal.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Goal.Get)
				r.Put("/parent", h.Goal.Move)
				r.Put("/status", h.Goal.ChangeStatus)
			})
		})

		r.Route("/departments", func(r chi.Router) {
			r.Get("/", h.Department.List)

			// Manager only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Post("/", h.Department.Create)
				r.Put("/{id}", h.Department.Rename)
				r.Put("/{id}/parent", h.Department.Move)
			})
		})

		r.Route("/competencies", func(r chi.Router) {
			r.Get("/", h.Competency.ListByEmployee)
			r.Get("/kpis", h.Competency.ListKPIs)

			// Manager only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Post("/", h.Competency.Assign)
				r.Delete("/{id}", h.Competency.Unassign)
				r.Post("/kpis", h.Competency.AssignKPI)
				r.Delete("/kpis/{id}", h.Competency.UnassignKPI)
			})
		})

		r.Route("/employees/{id}", func(r chi.Router) {
			r.Get("/", h.Employee.GetEmployee)
			r.With(middleware.RequireManager).Put("/employment-status", h.Employee.ChangeEmploymentStatus)
		})
	})
	return r
}
