package main

import (
	"fmt"
	"net/http"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/config"
	appHTTP "github.com/User-2rxeg/Full-Hr-System-sub013/internal/handler/http"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/backup"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/cron"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/database"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/jwt"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/notifier"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/runlock"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/repository/postgresql"
	ledgerService "github.com/User-2rxeg/Full-Hr-System-sub013/internal/service/ledger"
	payrollrunService "github.com/User-2rxeg/Full-Hr-System-sub013/internal/service/payrollrun"
	payslipService "github.com/User-2rxeg/Full-Hr-System-sub013/internal/service/payslip"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/service/reference"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	runRepo := postgresql.NewPayrollRunRepository(db)
	payslipRepo := postgresql.NewPayslipRepository(db)
	ledgerRepo := postgresql.NewLedgerRepository(db)
	directory := postgresql.NewEmployeeDirectory(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	locks := runlock.NewArena()
	freezeGuard := runlock.NewGuard()
	notify := notifier.NewLogSender()
	detector := payrollrunService.NewDetector(cfg.Detection)
	refValidator := reference.NewValidator(payslipRepo, runRepo)

	runSvc := payrollrunService.NewService(runRepo, payslipRepo, ledgerRepo, directory, detector, locks, freezeGuard, notify)
	payslipSvc := payslipService.NewService(payslipRepo)
	ledgerSvc := ledgerService.NewService(ledgerRepo, payslipRepo, refValidator)

	runHandler := appHTTP.NewPayrollRunHandler(runSvc)
	payslipHandler := appHTTP.NewPayslipHandler(payslipSvc)
	ledgerHandler := appHTTP.NewLedgerHandler(ledgerSvc)

	router := appHTTP.NewRouter(JWTService, runHandler, payslipHandler, ledgerHandler)

	scheduler := cron.NewScheduler()
	if cfg.Backup.Enabled {
		backupRunner := backup.NewRunner(freezeGuard, nil)
		scheduler.AddJob("database-backup", cfg.Backup.Interval, backupRunner.Run)
	}
	scheduler.Start()
	defer scheduler.Stop()

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
