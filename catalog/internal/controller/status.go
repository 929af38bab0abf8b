package controller

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/Alturino/salesrep/catalog/internal/common/otel"
	"github.com/Alturino/salesrep/catalog/internal/service"
	"github.com/Alturino/salesrep/internal/constants"
	inHttp "github.com/Alturino/salesrep/internal/http"
	"github.com/Alturino/salesrep/internal/log"
	"github.com/Alturino/salesrep/internal/middleware"
)

type SchedulerStatus interface {
	Status() service.SchedulerStatus
}

type StatusController struct {
	scheduler SchedulerStatus
}

func AttachStatusController(mux *mux.Router, scheduler SchedulerStatus) {
	controller := StatusController{scheduler: scheduler}

	mux.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	router := mux.PathPrefix("/").Subrouter()
	router.Use(
		otelmux.Middleware(constants.APP_SYNC_AGENT),
		middleware.Logging,
		middleware.RecoverPanic,
	)
	router.HandleFunc("/healthz", controller.Health).Methods(http.MethodGet)
	router.HandleFunc("/scheduler", controller.Scheduler).Methods(http.MethodGet)
}

func (s StatusController) Health(w http.ResponseWriter, r *http.Request) {
	inHttp.WriteJsonResponse(r.Context(), w, http.StatusOK, map[string]any{
		"status":     "ok",
		"statusCode": http.StatusOK,
	})
}

func (s StatusController) Scheduler(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "StatusController Scheduler")
	defer span.End()

	status := s.scheduler.Status()
	zerolog.Ctx(c).
		Trace().
		Str(log.KeyTag, "StatusController Scheduler").
		Bool(log.KeyState, status.Polling).
		Msg("reporting scheduler status")

	inHttp.WriteJsonResponse(c, w, http.StatusOK, map[string]any{
		"status":     "success",
		"statusCode": http.StatusOK,
		"data":       map[string]any{"scheduler": status},
	})
}
