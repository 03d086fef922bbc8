package middleware

import (
	"net/http"

	"wallmag/internal/reqctx"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID кладёт идентификатор запроса в контекст и заголовок ответа.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(reqctx.WithRequestID(r.Context(), reqID)))
	})
}
