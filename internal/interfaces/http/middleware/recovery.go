package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dreschagin/activity-globe/pkg/logger"
)

// Recovery перехватывает panic в handler и отвечает 500 вместо падения процесса
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				log.Error("Panic in HTTP handler", fmt.Errorf("%v", recovered),
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", RequestIDFrom(r),
					"stack", string(debug.Stack()),
				)
				WriteError(w, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
