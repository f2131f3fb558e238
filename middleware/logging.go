package middleware

import (
	"net/http"
	"time"

	"trello-project/microservices/task-manager/logging"

	"github.com/sirupsen/logrus"
)

func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		entry := logging.Logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"route":    routeTemplate(r),
			"status":   wrapped.statusCode,
			"duration": time.Since(start).String(),
		})
		if wrapped.statusCode >= http.StatusInternalServerError {
			entry.Errorf("Event ID: HTTP_REQUEST, Description: %s %s failed", r.Method, r.URL.Path)
			return
		}
		entry.Debugf("Event ID: HTTP_REQUEST, Description: %s %s", r.Method, r.URL.Path)
	})
}
