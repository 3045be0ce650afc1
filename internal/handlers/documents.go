package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"exam-docs/internal/config"
	"exam-docs/internal/documents"
	"exam-docs/internal/models"

	"go.uber.org/zap"
)

// Documents is the document service the handlers render.
type Documents interface {
	Statements(ctx context.Context, p models.DocumentParams) (*documents.StatementSet, error)
	RegistrationLists(ctx context.Context, p models.DocumentParams) (*documents.RegistrationListSet, error)
	GeneralStatement(ctx context.Context, p models.DocumentParams) (*documents.GeneralStatement, error)
	TransferAct(ctx context.Context, p models.DocumentParams) (*documents.TransferAct, error)
	AccompanyingSheets(ctx context.Context, p models.DocumentParams) (*documents.AccompanyingSheetSet, error)
}

type DocumentsHandler struct {
	cfg      *config.Config
	docs     Documents
	lookups  Lookups
	renderer *Renderer
	log      *zap.Logger
}

func NewDocumentsHandler(cfg *config.Config, docs Documents, lookups Lookups, renderer *Renderer, logger *zap.Logger) *DocumentsHandler {
	return &DocumentsHandler{cfg: cfg, docs: docs, lookups: lookups, renderer: renderer, log: logger}
}

type indexPage struct {
	Classrooms []string
	Subjects   []string
}

type errorPage struct {
	Title   string
	Message string
}

// Index renders the parameter selection form.
func (h *DocumentsHandler) Index(w http.ResponseWriter, r *http.Request) {
	classrooms, err := h.lookups.Classrooms(r.Context())
	if err != nil {
		h.log.Error("failed to load classrooms", zap.Error(err))
		h.renderError(w, http.StatusInternalServerError, "Ошибка сервера")
		return
	}
	subjects, err := h.lookups.Subjects(r.Context())
	if err != nil {
		h.log.Error("failed to load subjects", zap.Error(err))
		h.renderError(w, http.StatusInternalServerError, "Ошибка сервера")
		return
	}
	h.renderer.Render(w, http.StatusOK, "index.html", indexPage{Classrooms: classrooms, Subjects: subjects})
}

// Statements renders one classroom statement, or all of them when
// all_classrooms=true.
func (h *DocumentsHandler) Statements(w http.ResponseWriter, r *http.Request) {
	p := parseParams(r)
	doc, err := h.docs.Statements(r.Context(), p)
	h.respond(w, r, "statement.html", doc, err)
}

func (h *DocumentsHandler) RegistrationLists(w http.ResponseWriter, r *http.Request) {
	p := parseParams(r)
	doc, err := h.docs.RegistrationLists(r.Context(), p)
	h.respond(w, r, "registration_list.html", doc, err)
}

func (h *DocumentsHandler) GeneralStatement(w http.ResponseWriter, r *http.Request) {
	p := parseParams(r)
	doc, err := h.docs.GeneralStatement(r.Context(), p)
	h.respond(w, r, "general_statement.html", doc, err)
}

func (h *DocumentsHandler) TransferAct(w http.ResponseWriter, r *http.Request) {
	p := parseParams(r)
	doc, err := h.docs.TransferAct(r.Context(), p)
	h.respond(w, r, "transfer_act.html", doc, err)
}

// AccompanyingSheets accepts all_sheets=true as an alias of all_classrooms.
func (h *DocumentsHandler) AccompanyingSheets(w http.ResponseWriter, r *http.Request) {
	p := parseParams(r)
	if r.URL.Query().Get("all_sheets") == "true" {
		p.AllClassrooms = true
	}
	doc, err := h.docs.AccompanyingSheets(r.Context(), p)
	h.respond(w, r, "accompanying_sheets.html", doc, err)
}

func parseParams(r *http.Request) models.DocumentParams {
	q := r.URL.Query()
	return models.DocumentParams{
		Subject:       strings.TrimSpace(q.Get("subject")),
		ExamDate:      strings.TrimSpace(q.Get("exam_date")),
		SiteCode:      strings.TrimSpace(q.Get("site_code")),
		Classroom:     strings.TrimSpace(q.Get("classroom")),
		Parallel:      strings.TrimSpace(q.Get("parallel")),
		AllClassrooms: q.Get("all_classrooms") == "true",
	}
}

func wantsJSON(r *http.Request) bool {
	return r.URL.Query().Get("format") == "json"
}

// respond writes either the shaped document or the error it failed with.
// doc is only touched when err is nil.
func (h *DocumentsHandler) respond(w http.ResponseWriter, r *http.Request, tmpl string, doc interface{}, err error) {
	if err != nil {
		status, message := classify(err)
		h.cfg.Debugf("document request %s failed with %d: %v", r.URL.Path, status, err)
		if wantsJSON(r) {
			jsonError(w, status, message)
			return
		}
		h.renderError(w, status, message)
		return
	}

	if wantsJSON(r) {
		jsonResponse(w, http.StatusOK, doc)
		return
	}
	h.renderer.Render(w, http.StatusOK, tmpl, doc)
}

// classify maps the error taxonomy onto HTTP statuses.
func classify(err error) (int, string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		if len(verr.Fields) == 1 && verr.Fields[0] == "classroom" {
			return http.StatusBadRequest, "Не выбрана аудитория"
		}
		return http.StatusBadRequest, fmt.Sprintf("Не все обязательные поля заполнены: %s", strings.Join(verr.Fields, ", "))
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "Не найдено аудиторий для выбранного предмета"
	default:
		return http.StatusInternalServerError, "Ошибка сервера: " + err.Error()
	}
}

func (h *DocumentsHandler) renderError(w http.ResponseWriter, status int, message string) {
	h.renderer.Render(w, status, "error.html", errorPage{Title: http.StatusText(status), Message: message})
}
