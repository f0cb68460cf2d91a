package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lifeup-app/lifeup-api/internal/rbac"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Write(data []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(data)
}

// Hook builds the post-completion middleware for one tagged operation. It
// fires only after the primary response succeeded, and only when the caller
// holds admin privileges. Emission errors are logged and swallowed.
func Hook(tag rbac.AuditTag, recorder Recorder, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if rec.status >= http.StatusBadRequest {
				return
			}
			principal := rbac.PrincipalFromContext(r.Context())
			if principal == nil || !principal.RoleTier.HasAdminPrivileges() {
				return
			}

			details, _ := json.Marshal(map[string]string{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			entry := Entry{
				UserID:    principal.ID,
				Action:    tag.Action,
				Resource:  tag.Resource,
				Details:   string(details),
				IPAddress: r.RemoteAddr,
				UserAgent: r.UserAgent(),
			}
			// The response is already on the wire; detach from request
			// cancellation so a disconnecting caller cannot drop the record.
			if err := recorder.Record(context.WithoutCancel(r.Context()), entry); err != nil {
				if logger != nil {
					logger.Warn("activity record dropped",
						slog.String("action", tag.Action),
						slog.String("resource", tag.Resource),
						slog.Any("error", err))
				}
			}
		})
	}
}
