package main

import (
	"fmt"
	"net/http"

	"github.com/paystream-hq/payroll-backend-go/internal/config"
	appHTTP "github.com/paystream-hq/payroll-backend-go/internal/handler/http"
	"github.com/paystream-hq/payroll-backend-go/internal/pkg/database"
	"github.com/paystream-hq/payroll-backend-go/internal/pkg/jwt"
	"github.com/paystream-hq/payroll-backend-go/internal/pkg/wallet"
	"github.com/paystream-hq/payroll-backend-go/internal/repository/postgresql"
	payrollService "github.com/paystream-hq/payroll-backend-go/internal/service/payroll"
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

	txManager := postgresql.NewTxManager(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	recordRepo := postgresql.NewRecordRepository(db)
	batchRepo := postgresql.NewBatchRepository(db)

	walletClient := wallet.NewClient(cfg.Wallet.BaseURL, cfg.Wallet.APIKey)
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	payrollSvc := payrollService.NewPayrollService(txManager, recordRepo, batchRepo, employeeRepo, walletClient)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)

	router := appHTTP.NewRouter(jwtService, payrollHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
