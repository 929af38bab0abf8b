package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	inHttp "github.com/Alturino/salesrep/internal/http"
	"github.com/Alturino/salesrep/internal/log"
	"github.com/Alturino/salesrep/internal/otel"
)

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(inHttp.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c, span := otel.Tracer.Start(
			r.Context(),
			"middleware Logging",
			trace.WithAttributes(
				attribute.String(log.KeyRequestID, requestID),
				attribute.String("method", r.Method),
				attribute.String("uri", r.RequestURI),
			),
		)
		defer span.End()

		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyRequestID, requestID).
			Dict("request", zerolog.Dict().
				Str("host", r.Host).
				Str("ip", r.RemoteAddr).
				Str("method", r.Method).
				Str("uri", r.RequestURI)).
			Str(log.KeyTag, "middleware Logging").
			Logger()
		logger.Trace().Msg("received request")

		c = log.AttachRequestIDToContext(c, requestID)
		c = logger.WithContext(c)
		w.Header().Set(inHttp.HeaderRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(c))
	})
}
