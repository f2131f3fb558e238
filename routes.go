package main

import (
	"net/http"

	"trello-project/microservices/task-manager/handlers"
	"trello-project/microservices/task-manager/middleware"
	"trello-project/microservices/task-manager/models"

	"github.com/gorilla/mux"
)

type routeHandlers struct {
	users         *handlers.UserHandler
	tasks         *handlers.TaskHandler
	teams         *handlers.TeamHandler
	performance   *handlers.PerformanceHandler
	activities    *handlers.ActivityHandler
	reminders     *handlers.ReminderHandler
	notifications *handlers.NotificationHandler
}

func newRouter(h routeHandlers, tokens middleware.TokenValidator, corsOrigin string) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Metrics, middleware.RequestLogger)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", middleware.MetricsHandler()).Methods(http.MethodGet)

	// Javne rute
	r.HandleFunc("/api/auth/register", h.users.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", h.users.Login).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuth(tokens))

	api.HandleFunc("/auth/me", h.users.Me).Methods(http.MethodGet)
	api.HandleFunc("/users", h.users.GetUsers).Methods(http.MethodGet)

	api.HandleFunc("/tasks", h.tasks.GetAllTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", h.tasks.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}", h.tasks.GetTask).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", h.tasks.UpdateTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{id}", h.tasks.DeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{id}/comments", h.tasks.AddComment).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/comments/{commentId}", h.tasks.UpdateComment).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{id}/comments/{commentId}", h.tasks.DeleteComment).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{id}/attachments", h.tasks.UploadAttachment).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/attachments/{attachmentId}", h.tasks.DownloadAttachment).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}/attachments/{attachmentId}", h.tasks.DeleteAttachment).Methods(http.MethodDelete)

	api.HandleFunc("/teams", h.teams.GetTeams).Methods(http.MethodGet)
	api.HandleFunc("/teams", h.teams.CreateTeam).Methods(http.MethodPost)
	api.HandleFunc("/teams/{id}", h.teams.GetTeam).Methods(http.MethodGet)
	api.HandleFunc("/teams/{id}", h.teams.UpdateTeam).Methods(http.MethodPut)
	api.HandleFunc("/teams/{id}", h.teams.DeleteTeam).Methods(http.MethodDelete)
	api.HandleFunc("/teams/{id}/members/{userId}", h.teams.AddMember).Methods(http.MethodPost)
	api.HandleFunc("/teams/{id}/members/{userId}", h.teams.RemoveMember).Methods(http.MethodDelete)
	api.HandleFunc("/teams/{id}/managers/{userId}", h.teams.AddManager).Methods(http.MethodPost)
	api.HandleFunc("/teams/{id}/managers/{userId}", h.teams.RemoveManager).Methods(http.MethodDelete)
	api.HandleFunc("/teams/{id}/messages", h.teams.GetMessages).Methods(http.MethodGet)
	api.HandleFunc("/teams/{id}/messages", h.teams.PostMessage).Methods(http.MethodPost)

	api.HandleFunc("/performance/teams", h.performance.TeamLeaderboard).Methods(http.MethodGet)
	api.HandleFunc("/performance/members", h.performance.MemberLeaderboard).Methods(http.MethodGet)
	api.HandleFunc("/performance/teams/{id}", h.performance.TeamBreakdown).Methods(http.MethodGet)

	api.HandleFunc("/activities", h.activities.GetActivities).Methods(http.MethodGet)
	api.Handle("/reminders/trigger", middleware.RequireRoles(http.HandlerFunc(h.reminders.Trigger), models.RoleAdmin)).Methods(http.MethodPost)

	api.HandleFunc("/notifications", h.notifications.GetNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/read", h.notifications.MarkAsRead).Methods(http.MethodPut)
	api.HandleFunc("/notifications", h.notifications.DeleteNotification).Methods(http.MethodDelete)

	return middleware.CORS(corsOrigin)(r)
}
