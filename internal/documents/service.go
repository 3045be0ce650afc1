package documents

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"exam-docs/internal/models"
	"exam-docs/internal/util"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Store is the query layer the documents are built from.
type Store interface {
	ClassroomsBySubject(ctx context.Context, subject string) ([]string, error)
	StudentsByClassroom(ctx context.Context, classroom, subject string) ([]models.StudentAssignment, error)
	CountsByClassroomParallel(ctx context.Context, subject string) ([]models.GroupCount, error)
	CountsByParallelClassroom(ctx context.Context, subject string) ([]models.GroupCount, error)
	TotalsByParallel(ctx context.Context, subject string) ([]models.GroupCount, error)
	ClassroomParallels(ctx context.Context, subject, classroom, parallel string) ([]models.GroupKey, error)
	ParticipantCodes(ctx context.Context, subject string, key models.GroupKey) (models.ParticipantGroup, error)
}

// Header is printed at the top of every document.
type Header struct {
	Subject         string `json:"subject"`
	ExamDate        string `json:"exam_date"`
	ExamDateDisplay string `json:"exam_date_display"`
	SiteCode        string `json:"site_code"`
}

type Statement struct {
	Header
	Classroom string         `json:"classroom"`
	Title     string         `json:"title"`
	Students  []StatementRow `json:"students"`
}

type StatementSet struct {
	Header
	Statements []Statement `json:"statements"`
}

type RegistrationList struct {
	Header
	Classroom string            `json:"classroom"`
	Title     string            `json:"title"`
	Students  []RegistrationRow `json:"students"`
}

type RegistrationListSet struct {
	Header
	Lists []RegistrationList `json:"lists"`
}

type GeneralStatement struct {
	Header
	Title string       `json:"title"`
	Rows  []GeneralRow `json:"rows"`
}

type TransferAct struct {
	Header
	Title          string             `json:"title"`
	WorksRows      []TransferRow      `json:"worksRows"`
	ParallelTotals []ParallelTotalRow `json:"parallelTotals"`
	TotalWorks     int                `json:"totalWorks"`
}

type AccompanyingSheet struct {
	Classroom string     `json:"classroom"`
	Parallel  string     `json:"parallel"`
	Count     int        `json:"count"`
	Title     string     `json:"title"`
	Codes     []SheetRow `json:"codes"`
}

type AccompanyingSheetSet struct {
	Header
	Sheets []AccompanyingSheet `json:"sheets"`
}

// Service builds every document type on top of the shared pipeline.
type Service struct {
	store Store
	log   *zap.Logger

	students      Pipeline[models.StudentAssignment, StatementRow]
	registrations Pipeline[models.StudentAssignment, RegistrationRow]
	general       Pipeline[models.GroupCount, GeneralRow]
	works         Pipeline[models.GroupCount, TransferRow]
	totals        Pipeline[models.GroupCount, ParallelTotalRow]
	sheets        Pipeline[string, SheetRow]
}

func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{store: store, log: logger}

	classroomKeys := func(ctx context.Context, p models.DocumentParams) ([]models.GroupKey, error) {
		classrooms, err := store.ClassroomsBySubject(ctx, p.Subject)
		if err != nil {
			return nil, err
		}
		keys := make([]models.GroupKey, 0, len(classrooms))
		for _, c := range classrooms {
			keys = append(keys, models.GroupKey{Classroom: c})
		}
		return keys, nil
	}
	fetchStudents := func(ctx context.Context, p models.DocumentParams, key models.GroupKey) ([]models.StudentAssignment, error) {
		return store.StudentsByClassroom(ctx, key.Classroom, p.Subject)
	}

	s.students = Pipeline[models.StudentAssignment, StatementRow]{
		Keys:    classroomKeys,
		Fetch:   fetchStudents,
		Project: projectStatementRow,
	}
	s.registrations = Pipeline[models.StudentAssignment, RegistrationRow]{
		Keys:    classroomKeys,
		Fetch:   fetchStudents,
		Project: projectRegistrationRow,
		Number:  numberRegistrationRow,
	}
	s.general = Pipeline[models.GroupCount, GeneralRow]{
		Fetch: func(ctx context.Context, p models.DocumentParams, _ models.GroupKey) ([]models.GroupCount, error) {
			return store.CountsByClassroomParallel(ctx, p.Subject)
		},
		Project: projectGeneralRow,
	}
	s.works = Pipeline[models.GroupCount, TransferRow]{
		Fetch: func(ctx context.Context, p models.DocumentParams, _ models.GroupKey) ([]models.GroupCount, error) {
			return store.CountsByParallelClassroom(ctx, p.Subject)
		},
		Project: projectTransferRow,
	}
	s.totals = Pipeline[models.GroupCount, ParallelTotalRow]{
		Fetch: func(ctx context.Context, p models.DocumentParams, _ models.GroupKey) ([]models.GroupCount, error) {
			return store.TotalsByParallel(ctx, p.Subject)
		},
		Project: projectParallelTotal,
	}
	s.sheets = Pipeline[string, SheetRow]{
		Keys: func(ctx context.Context, p models.DocumentParams) ([]models.GroupKey, error) {
			return store.ClassroomParallels(ctx, p.Subject, "", "")
		},
		Fetch: func(ctx context.Context, p models.DocumentParams, key models.GroupKey) ([]string, error) {
			group, err := store.ParticipantCodes(ctx, p.Subject, key)
			if err != nil {
				return nil, err
			}
			return group.Codes, nil
		},
		Project: projectSheetRow,
		Number:  numberSheetRow,
	}

	return s
}

// Statements builds the seating statement of one classroom, or of every
// classroom of the subject when AllClassrooms is set.
func (s *Service) Statements(ctx context.Context, p models.DocumentParams) (*StatementSet, error) {
	if err := ValidateParams(p, true); err != nil {
		return nil, err
	}

	tables, err := run(ctx, s, "statement", s.students, p)
	if err != nil {
		return nil, err
	}

	set := &StatementSet{Header: newHeader(p), Statements: make([]Statement, 0, len(tables))}
	for _, t := range tables {
		set.Statements = append(set.Statements, Statement{
			Header:    set.Header,
			Classroom: t.Key.Classroom,
			Title:     fmt.Sprintf("Ведомость для аудитории %s", t.Key.Classroom),
			Students:  t.Rows,
		})
	}
	return set, nil
}

// RegistrationLists builds numbered registration lists, one per classroom.
func (s *Service) RegistrationLists(ctx context.Context, p models.DocumentParams) (*RegistrationListSet, error) {
	if err := ValidateParams(p, true); err != nil {
		return nil, err
	}

	tables, err := run(ctx, s, "registration list", s.registrations, p)
	if err != nil {
		return nil, err
	}

	set := &RegistrationListSet{Header: newHeader(p), Lists: make([]RegistrationList, 0, len(tables))}
	for _, t := range tables {
		set.Lists = append(set.Lists, RegistrationList{
			Header:    set.Header,
			Classroom: t.Key.Classroom,
			Title:     fmt.Sprintf("Регистрационный лист участников, аудитория %s", t.Key.Classroom),
			Students:  t.Rows,
		})
	}
	return set, nil
}

// GeneralStatement counts planned works per classroom and parallel.
func (s *Service) GeneralStatement(ctx context.Context, p models.DocumentParams) (*GeneralStatement, error) {
	if err := ValidateParams(p, false); err != nil {
		return nil, err
	}

	t, err := s.general.Build(ctx, p, models.GroupKey{})
	if err != nil {
		return nil, s.fail("general statement", p, err)
	}
	s.log.Debug("built general statement", zap.String("subject", p.Subject), zap.Int("groups", t.Filled))

	return &GeneralStatement{
		Header: newHeader(p),
		Title:  "Общая ведомость учёта олимпиадных работ",
		Rows:   t.Rows,
	}, nil
}

// TransferAct lists works per parallel and classroom plus the per-parallel
// totals. The two tables are padded independently.
func (s *Service) TransferAct(ctx context.Context, p models.DocumentParams) (*TransferAct, error) {
	if err := ValidateParams(p, false); err != nil {
		return nil, err
	}

	works, err := s.works.Build(ctx, p, models.GroupKey{})
	if err != nil {
		return nil, s.fail("transfer act", p, err)
	}
	totals, err := s.totals.Build(ctx, p, models.GroupKey{})
	if err != nil {
		return nil, s.fail("transfer act", p, err)
	}

	act := &TransferAct{
		Header:         newHeader(p),
		Title:          "Акт приёма-передачи олимпиадных работ",
		WorksRows:      works.Rows,
		ParallelTotals: totals.Rows,
	}
	for _, r := range totals.Rows[:totals.Filled] {
		act.TotalWorks += r.Total
	}
	return act, nil
}

// AccompanyingSheets builds one sheet of participant codes per
// (classroom, parallel) group. In single mode the groups are limited to the
// requested classroom (and parallel, when given); if that classroom has no
// group a single blank sheet is produced.
func (s *Service) AccompanyingSheets(ctx context.Context, p models.DocumentParams) (*AccompanyingSheetSet, error) {
	if err := ValidateParams(p, true); err != nil {
		return nil, err
	}

	var tables []Table[SheetRow]
	var err error
	if p.AllClassrooms {
		tables, err = s.sheets.Expand(ctx, p)
	} else {
		tables, err = s.singleSheets(ctx, p)
	}
	if err != nil {
		return nil, s.fail("accompanying sheets", p, err)
	}

	set := &AccompanyingSheetSet{Header: newHeader(p), Sheets: make([]AccompanyingSheet, 0, len(tables))}
	for _, t := range tables {
		set.Sheets = append(set.Sheets, AccompanyingSheet{
			Classroom: t.Key.Classroom,
			Parallel:  t.Key.Parallel,
			Count:     t.Filled,
			Title:     sheetTitle(t.Key),
			Codes:     t.Rows,
		})
	}
	s.log.Debug("built accompanying sheets", zap.String("subject", p.Subject), zap.Int("sheets", len(set.Sheets)))
	return set, nil
}

func (s *Service) singleSheets(ctx context.Context, p models.DocumentParams) ([]Table[SheetRow], error) {
	keys, err := s.store.ClassroomParallels(ctx, p.Subject, p.Classroom, p.Parallel)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		keys = []models.GroupKey{{Classroom: p.Classroom, Parallel: p.Parallel}}
	}

	tables := make([]Table[SheetRow], 0, len(keys))
	for _, key := range keys {
		t, err := s.sheets.Build(ctx, p, key)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// run executes a per-classroom pipeline in single or expansion mode.
func run[Raw, Row any](ctx context.Context, s *Service, doc string, pl Pipeline[Raw, Row], p models.DocumentParams) ([]Table[Row], error) {
	var tables []Table[Row]
	if p.AllClassrooms {
		var err error
		tables, err = pl.Expand(ctx, p)
		if err != nil {
			return nil, s.fail(doc, p, err)
		}
	} else {
		t, err := pl.Build(ctx, p, models.GroupKey{Classroom: p.Classroom})
		if err != nil {
			return nil, s.fail(doc, p, err)
		}
		tables = []Table[Row]{t}
	}

	s.log.Debug("built documents",
		zap.String("document", doc),
		zap.String("subject", p.Subject),
		zap.Bool("all_classrooms", p.AllClassrooms),
		zap.Int("count", len(tables)))
	return tables, nil
}

// paramsValidator reports fields by their request (json) names.
var paramsValidator = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}()

// ValidateParams checks the required parameters without touching storage.
// Aggregate documents do not take a classroom, so perClassroom=false skips
// that rule.
func ValidateParams(p models.DocumentParams, perClassroom bool) error {
	var err error
	if perClassroom {
		err = paramsValidator.Struct(p)
	} else {
		err = paramsValidator.StructPartial(p, "Subject", "ExamDate", "SiteCode")
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &models.ValidationError{Fields: fields}
}

// fail logs storage faults before handing the error back. Not-found is an
// expected outcome and is only logged at debug level.
func (s *Service) fail(doc string, p models.DocumentParams, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		s.log.Debug("nothing to generate", zap.String("document", doc), zap.String("subject", p.Subject))
		return err
	}

	fields := []zap.Field{
		zap.String("document", doc),
		zap.String("subject", p.Subject),
		zap.String("classroom", p.Classroom),
		zap.Error(err),
	}
	var se *models.StorageError
	if errors.As(err, &se) {
		fields = append(fields, zap.String("op", se.Op), zap.String("sqlstate", se.Code))
	}
	s.log.Error("failed to build document", fields...)
	return err
}

func newHeader(p models.DocumentParams) Header {
	return Header{
		Subject:         p.Subject,
		ExamDate:        p.ExamDate,
		ExamDateDisplay: util.FormatExamDate(p.ExamDate),
		SiteCode:        p.SiteCode,
	}
}

func sheetTitle(key models.GroupKey) string {
	if key.Parallel == "" {
		return fmt.Sprintf("Сопроводительный бланк, аудитория %s", key.Classroom)
	}
	return fmt.Sprintf("Сопроводительный бланк, аудитория %s, параллель %s", key.Classroom, key.Parallel)
}
