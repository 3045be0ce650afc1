package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Lookups are the read-only lists used to fill the selection form.
type Lookups interface {
	Classrooms(ctx context.Context) ([]string, error)
	Subjects(ctx context.Context) ([]string, error)
	SubjectsByClassroom(ctx context.Context, classroom string) ([]string, error)
}

type APIHandler struct {
	lookups Lookups
	log     *zap.Logger
}

func NewAPIHandler(lookups Lookups, logger *zap.Logger) *APIHandler {
	return &APIHandler{lookups: lookups, log: logger}
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// SubjectsByClassroom returns the subjects sat in the classroom of the path.
func (h *APIHandler) SubjectsByClassroom(w http.ResponseWriter, r *http.Request) {
	classroom := mux.Vars(r)["classroom"]
	subjects, err := h.lookups.SubjectsByClassroom(r.Context(), classroom)
	if err != nil {
		h.log.Error("failed to get subjects", zap.String("classroom", classroom), zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "Ошибка сервера")
		return
	}
	jsonResponse(w, http.StatusOK, subjects)
}

// AllSubjects returns every subject; used when all classrooms are selected.
func (h *APIHandler) AllSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.lookups.Subjects(r.Context())
	if err != nil {
		h.log.Error("failed to get all subjects", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "Ошибка сервера")
		return
	}
	jsonResponse(w, http.StatusOK, subjects)
}

// Classrooms returns every classroom with at least one assignment.
func (h *APIHandler) Classrooms(w http.ResponseWriter, r *http.Request) {
	classrooms, err := h.lookups.Classrooms(r.Context())
	if err != nil {
		h.log.Error("failed to get classrooms", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "Ошибка сервера")
		return
	}
	jsonResponse(w, http.StatusOK, classrooms)
}
