package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/R3E-Network/light_api/internal/httputil"
	"github.com/R3E-Network/light_api/internal/logging"
)

// RecoveryMiddleware turns a handler panic into a structured 500 response.
// It is the outermost layer, so headers set further in (CORS, trace id) are
// already on the writer when it fires.
type RecoveryMiddleware struct {
	logger *logging.Logger
}

// NewRecoveryMiddleware creates a new recovery middleware
func NewRecoveryMiddleware(logger *logging.Logger) *RecoveryMiddleware {
	return &RecoveryMiddleware{logger: logger}
}

// Handler returns the recovery middleware handler
func (m *RecoveryMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			if traceID := rw.Header().Get(TraceHeader); traceID != "" {
				r = r.WithContext(logging.WithTraceID(r.Context(), traceID))
			}

			m.logger.WithContext(r.Context()).WithFields(map[string]interface{}{
				"panic":  rec,
				"method": r.Method,
				"path":   r.URL.Path,
				"stack":  string(debug.Stack()),
			}).Error("panic serving request")

			if rw.written {
				return
			}
			httputil.InternalError(rw, r, "Internal server error")
		}()

		next.ServeHTTP(rw, r)
	})
}
