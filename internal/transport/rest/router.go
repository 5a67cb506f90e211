package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/eproba/server/internal/auth"
	"github.com/eproba/server/internal/team"
	"github.com/eproba/server/internal/transport/middleware"
	"github.com/eproba/server/internal/transport/swagger"
	"github.com/eproba/server/internal/user"
	"github.com/eproba/server/internal/worksheet"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	teamHandler *team.Handler,
	worksheetHandler *worksheet.Handler,
	allowedOrigins string,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// OpenAPI spec and Swagger UI live outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/register", authHandler.Register)
			sr.Post("/login", authHandler.Login)
			sr.Post("/refresh", authHandler.RefreshToken)
			sr.Post("/logout", authHandler.Logout)
		})

		// everything below requires a valid access token
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Get("/users/me", userHandler.GetMe)
			pr.Get("/users", userHandler.GetTeamMembers)
			pr.Patch("/users/{id}", userHandler.UpdateUser)

			pr.Route("/teams", func(tr chi.Router) {
				tr.Get("/", teamHandler.ListTeams)
				tr.Post("/", teamHandler.CreateTeam)
				tr.Get("/{id}", teamHandler.GetTeam)
				tr.Post("/{id}/patrols", teamHandler.CreatePatrol)
			})
			pr.Delete("/patrols/{id}", teamHandler.DeletePatrol)

			pr.Route("/worksheets", func(wr chi.Router) {
				wr.Get("/", worksheetHandler.ListWorksheets)
				wr.Post("/", worksheetHandler.CreateWorksheet)
				wr.Get("/{id}", worksheetHandler.GetWorksheet)
				wr.Patch("/{id}", worksheetHandler.UpdateWorksheet)
				wr.Delete("/{id}", worksheetHandler.DeleteWorksheet)
				wr.Get("/{id}/approvers", worksheetHandler.ApproverCandidates)

				wr.Route("/{id}/tasks/{taskId}", func(kr chi.Router) {
					kr.Patch("/submit", worksheetHandler.SubmitTask)
					kr.Post("/unsubmit", worksheetHandler.UnsubmitTask)
					kr.Post("/accept", worksheetHandler.AcceptTask)
					kr.Post("/reject", worksheetHandler.RejectTask)
					kr.Post("/clear-status", worksheetHandler.ClearTaskStatus)
					kr.Post("/force/accept", worksheetHandler.ForceAcceptTask)
					kr.Post("/force/reject", worksheetHandler.ForceRejectTask)
				})
			})

			pr.Get("/tasks/to-approve", worksheetHandler.TasksToApprove)
		})
	})
}
