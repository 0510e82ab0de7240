package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-lifecycle-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/repository/postgresql"
	competencyService "github.com/cmlabs-hris/hris-lifecycle-go/internal/service/competency"
	departmentService "github.com/cmlabs-hris/hris-lifecycle-go/internal/service/department"
	documentService "github.com/cmlabs-hris/hris-lifecycle-go/internal/service/document"
	employeeService "github.com/cmlabs-hris/hris-lifecycle-go/internal/service/employee"
	evaluationService "github.com/cmlabs-hris/hris-lifecycle-go/internal/service/evaluation"
	goalService "github.com/cmlabs-hris/hris-lifecycle-go/internal/service/goal"
	leaveService "github.com/cmlabs-hris/hris-lifecycle-go/internal/service/leave"
	loanService "github.com/cmlabs-hris/hris-lifecycle-go/internal/service/loan"
	notificationService "github.com/cmlabs-hris/hris-lifecycle-go/internal/service/notification"
	onboardingService "github.com/cmlabs-hris/hris-lifecycle-go/internal/service/onboarding"
	overtimeService "github.com/cmlabs-hris/hris-lifecycle-go/internal/service/overtime"
	payrollService "github.com/cmlabs-hris/hris-lifecycle-go/internal/service/payroll"
	subscriptionService "github.com/cmlabs-hris/hris-lifecycle-go/internal/service/subscription"
	trainingService "github.com/cmlabs-hris/hris-lifecycle-go/internal/service/training"
	visitorService "github.com/cmlabs-hris/hris-lifecycle-go/internal/service/visitor"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), int32(cfg.Database.MaxConns), int32(cfg.Database.MinConns))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	tx := postgresql.NewTransactor(db)
	approvalRepo := postgresql.NewApprovalRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	subscriptionRepo := postgresql.NewSubscriptionRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	queue := jobs.NewQueue(jobs.Config{
		WorkerCount: cfg.Worker.WorkerCount,
		QueueSize:   cfg.Worker.QueueSize,
		JobTimeout:  cfg.Worker.JobTimeout,
	})
	seatService := subscriptionService.NewSeatService(tx, subscriptionRepo, employeeRepo)
	seatService.Register(queue)
	notificationService.NewHandler(notificationRepo).Register(queue)
	queue.Start()
	defer queue.Stop()

	// Jobs go through NATS when configured so every instance shares the work.
	var dispatcher jobs.Dispatcher = queue
	if cfg.NATS.URL != "" {
		conn, err := jobs.Connect(cfg.NATS.URL, "hris-lifecycle")
		if err != nil {
			return err
		}
		defer conn.Drain()

		consumer := jobs.NewNATSConsumer(conn, cfg.NATS.SubjectPrefix, cfg.NATS.QueueGroup, queue)
		if err := consumer.Start(); err != nil {
			return fmt.Errorf("start nats consumer: %w", err)
		}
		defer consumer.Stop()
		dispatcher = jobs.NewNATSDispatcher(conn, cfg.NATS.SubjectPrefix)
		slog.Info("Job fan-out via NATS enabled", "subject_prefix", cfg.NATS.SubjectPrefix)
	}

	leaves := leaveService.NewLeaveService(tx,
		postgresql.NewLeaveTypeRepository(db),
		postgresql.NewLeaveBalanceRepository(db),
		postgresql.NewLeaveApplicationRepository(db),
		approvalRepo,
		dispatcher,
	)
	overtimes := overtimeService.NewOvertimeService(tx, postgresql.NewOvertimeRepository(db), approvalRepo, dispatcher)
	loans := loanService.NewLoanService(tx, postgresql.NewLoanApplicationRepository(db), postgresql.NewLoanRepository(db), dispatcher)
	payrolls := payrollService.NewPayrollService(tx, postgresql.NewPayrollPeriodRepository(db), postgresql.NewPayrollEntryRepository(db), dispatcher)
	trainings := trainingService.NewTrainingService(tx, postgresql.NewTrainingSessionRepository(db), postgresql.NewTrainingEnrollmentRepository(db), dispatcher)
	evaluations := evaluationService.NewEvaluationService(tx, postgresql.NewEvaluationRepository(db), employeeRepo, dispatcher)
	documents := documentService.NewDocumentService(tx, postgresql.NewDocumentRequestRepository(db), dispatcher)
	visits := visitorService.NewVisitorService(tx, postgresql.NewVisitRepository(db), dispatcher)
	onboardings := onboardingService.NewOnboardingService(tx, postgresql.NewOnboardingTaskRepository(db), dispatcher)
	goals := goalService.NewGoalService(tx, postgresql.NewGoalRepository(db), dispatcher)
	departments := departmentService.NewDepartmentService(tx, postgresql.NewDepartmentRepository(db))
	competencies := competencyService.NewCompetencyService(tx, postgresql.NewCompetencyRepository(db), employeeRepo)
	employees := employeeService.NewEmployeeService(tx, employeeRepo, dispatcher)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AllowedOrigins: cfg.App.AllowedOrigins,
			Env:            cfg.App.Env,
			LogLevel:       cfg.SlogLevel(),
		},
		jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessTTL),
		appHTTP.Handlers{
			Leave:      appHTTP.NewLeaveHandler(leaves),
			Overtime:   appHTTP.NewOvertimeHandler(overtimes),
			Loan:       appHTTP.NewLoanHandler(loans),
			Payroll:    appHTTP.NewPayrollHandler(payrolls),
			Training:   appHTTP.NewTrainingHandler(trainings),
			Evaluation: appHTTP.NewEvaluationHandler(evaluations),
			Document:   appHTTP.NewDocumentHandler(documents),
			Visitor:    appHTTP.NewVisitorHandler(visits),
			Onboarding: appHTTP.NewOnboardingHandler(onboardings),
			Goal:       appHTTP.NewGoalHandler(goals),
			Department: appHTTP.NewDepartmentHandler(departments),
			Competency: appHTTP.NewCompetencyHandler(competencies),
			Employee:   appHTTP.NewEmployeeHandler(employees),
		},
	)

	scheduler := cron.NewScheduler()
	cron.NewLifecycleJobs(seatService, visits, dispatcher, cfg.Scheduler.VisitNoShowGracePeriod).
		RegisterJobs(scheduler, cfg.Scheduler.NoShowSweepInterval, cfg.Scheduler.BillingReconcileEvery)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server starting", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		slog.Info("Shutting down server")
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})

	return g.Wait()
}
