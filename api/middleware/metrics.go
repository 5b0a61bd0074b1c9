package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dreamcandylab/candylab-backend/pkg/metrics"
)

// Metrics records request latency labelled by the chi route pattern. The
// pattern is only complete after routing, so it is read once next returns.
func Metrics(recorder *metrics.HTTP) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			recorder.Observe(r.Method, chiPattern(r), writtenStatus(ww), time.Since(start))
		})
	}
}
