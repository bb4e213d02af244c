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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/user"
	"github.com/teamdesk/teamdesk-backend-go/internal/handler/http/middleware"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/jwt"
)

// RouterConfig carries the deployment settings the router needs.
type RouterConfig struct {
	Env         string
	Version     string
	FrontendURL string
	// UploadsPath is served under /uploads when set (local storage only).
	UploadsPath string
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	leaveHandler LeaveHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "teamdesk"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(middleware.Metrics)
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Handle("/metrics", promhttp.Handler())

	if cfg.UploadsPath != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsPath)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource cannot set headers; the stream authenticates by query token
		r.Get("/notifications/stream", notificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/leaves", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionLeaveViewAll)).Get("/", leaveHandler.List)
				r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Post("/", leaveHandler.Create)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveViewOwn))
					r.Get("/my", leaveHandler.ListMine)
					r.Get("/stats", leaveHandler.Stats)
					r.Get("/balance/{leaveType}", leaveHandler.Balance)
				})

				r.With(middleware.RequirePermission(user.PermissionLeaveApprove)).Get("/pending", leaveHandler.ListPending)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", leaveHandler.Get)
					r.Put("/", leaveHandler.Update)
					r.Delete("/", leaveHandler.Delete)
					r.Post("/cancel", leaveHandler.Cancel)
					r.With(middleware.RequirePermission(user.PermissionLeaveApprove)).Post("/decision", leaveHandler.Decide)

					r.Route("/attachments", func(r chi.Router) {
						r.Get("/", leaveHandler.ListAttachments)
						r.Post("/", leaveHandler.UploadAttachment)
						r.Delete("/{attachmentID}", leaveHandler.DeleteAttachment)
					})
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionNotificationViewOwn))
				r.Get("/", notificationHandler.List)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Post("/read", notificationHandler.MarkAsRead)
				r.Post("/read-all", notificationHandler.MarkAllAsRead)
				r.Post("/sse-token", notificationHandler.GetSSEToken)
			})
		})
	})
	return r
}
