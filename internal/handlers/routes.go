package handlers

import (
	"context"
	"net/http"
	"time"

	"exam-docs/internal/middleware"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewRouter registers every route. All routes are read-only GETs.
func NewRouter(docs *DocumentsHandler, api *APIHandler, db Pinger, logger *zap.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLog(logger), middleware.Recover(logger))

	r.HandleFunc("/", docs.Index).Methods(http.MethodGet)
	r.HandleFunc("/generate", docs.Statements).Methods(http.MethodGet)
	r.HandleFunc("/registration-list", docs.RegistrationLists).Methods(http.MethodGet)
	r.HandleFunc("/general-statement", docs.GeneralStatement).Methods(http.MethodGet)
	r.HandleFunc("/transfer-act", docs.TransferAct).Methods(http.MethodGet)
	r.HandleFunc("/accompanying-sheets", docs.AccompanyingSheets).Methods(http.MethodGet)

	r.HandleFunc("/api/subjects/{classroom}", api.SubjectsByClassroom).Methods(http.MethodGet)
	r.HandleFunc("/api/all-subjects", api.AllSubjects).Methods(http.MethodGet)
	r.HandleFunc("/api/classrooms", api.Classrooms).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			jsonError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	return r
}
