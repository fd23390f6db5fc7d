package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/paystream-hq/payroll-backend-go/internal/handler/http/middleware"
	"github.com/paystream-hq/payroll-backend-go/internal/pkg/jwt"
)

func NewRouter(jwtService jwt.Service, payrollHandler PayrollHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-backend"),
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

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/payroll", func(r chi.Router) {

				r.Route("/records", func(r chi.Router) {
					r.Get("/", payrollHandler.ListRecords)
					r.Post("/", payrollHandler.CreateRecord)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", payrollHandler.GetRecord)
						r.Put("/", payrollHandler.UpdateRecord)
						r.Post("/submit", payrollHandler.SubmitRecord)
						r.Post("/approve", payrollHandler.ApproveRecord)
						r.Post("/pay", payrollHandler.PayRecord)
						r.Post("/fail", payrollHandler.MarkRecordFailed)
						r.Post("/cancel", payrollHandler.CancelRecord)
					})
				})

				r.Route("/batches", func(r chi.Router) {
					r.Get("/", payrollHandler.ListBatches)
					r.Post("/", payrollHandler.CreateBatch)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", payrollHandler.GetBatch)
						r.Post("/submit", payrollHandler.SubmitBatch)
						r.Post("/approve", payrollHandler.ApproveBatch)
						r.Post("/process-payments", payrollHandler.ProcessBatchPayments)
					})
				})

				r.Get("/summary", payrollHandler.GetYearlySummary)
			})
		})
	})
	return r
}
