package routes

import (
	"net/http"
	"time"

	"SmartTent.api/internal/controller"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// Handlers bundles everything the router dispatches to.
type Handlers struct {
	Data    *controller.DataController
	Pages   *controller.PageController
	Static  http.Handler
	Live    http.Handler
	Metrics http.Handler
	Logger  *logrus.Logger
}

// NewRouter registers all application routes.
func NewRouter(h Handlers) *mux.Router {
	router := mux.NewRouter()
	if h.Logger != nil {
		router.Use(accessLog(h.Logger))
	}

	// Dashboard
	router.HandleFunc("/", h.Pages.HandleSensorPage).Methods(http.MethodGet)
	router.HandleFunc("/sensor", h.Pages.HandleSensorPage).Methods(http.MethodGet)
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", h.Static)).Methods(http.MethodGet)

	// Telemetry API
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/data", h.Data.HandleData).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/data/{device_id}", h.Data.HandleGet).Methods(http.MethodGet)
	api.HandleFunc("/status", h.Data.HandleStatus).Methods(http.MethodGet)

	if h.Live != nil {
		router.Handle("/ws", h.Live).Methods(http.MethodGet)
	}
	if h.Metrics != nil {
		router.Handle("/metrics", h.Metrics).Methods(http.MethodGet)
	}
	return router
}

// WithCORS allows cross-origin requests from origins ("*" for any).
func WithCORS(next http.Handler, origins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(next)
}

func accessLog(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"remote":   r.RemoteAddr,
				"duration": time.Since(start).String(),
			}).Debug("request served")
		})
	}
}
