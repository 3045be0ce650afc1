package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"exam-docs/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func params(classroom string, all bool) models.DocumentParams {
	return models.DocumentParams{
		Subject:       "Математика",
		ExamDate:      "2026-03-12",
		SiteCode:      "0412",
		Classroom:     classroom,
		AllClassrooms: all,
	}
}

func mathStudents() []models.StudentAssignment {
	return []models.StudentAssignment{
		seat("Математика", "101", "9", "2", "Петров", "Пётр", "M-9-002"),
		seat("Математика", "101", "9", "1", "Иванов", "Иван", "M-9-001"),
		seat("Математика", "101", "10", "3", "Смирнова", "Ольга", "M-10-003"),
		seat("Математика", "102", "11", "1", "Кузнецов", "Илья", "M-11-001"),
		seat("Физика", "103", "9", "1", "Орлова", "Мария", "F-9-001"),
	}
}

func TestStatements_SingleClassroom(t *testing.T) {
	store := &fakeStore{students: mathStudents()}
	svc := NewService(store, nil)

	set, err := svc.Statements(context.Background(), params("101", false))

	require.NoError(t, err)
	require.Len(t, set.Statements, 1)
	st := set.Statements[0]
	assert.Equal(t, "101", st.Classroom)
	assert.Equal(t, "Ведомость для аудитории 101", st.Title)
	assert.Equal(t, "12.03.2026", st.ExamDateDisplay)
	require.Len(t, st.Students, MinRows)
	assert.Equal(t, "Иванов Иван", st.Students[0].FullName)
	assert.Equal(t, "Петров Пётр", st.Students[1].FullName)
	assert.Equal(t, "Смирнова Ольга", st.Students[2].FullName)
	for _, row := range st.Students[3:] {
		assert.Equal(t, StatementRow{}, row)
	}
	assert.Equal(t, []string{"students"}, store.calls)
}

func TestStatements_SingleClassroomWithoutStudents(t *testing.T) {
	store := &fakeStore{students: mathStudents()}
	svc := NewService(store, nil)

	set, err := svc.Statements(context.Background(), params("999", false))

	require.NoError(t, err)
	require.Len(t, set.Statements, 1)
	assert.Len(t, set.Statements[0].Students, MinRows)
	assert.Equal(t, StatementRow{}, set.Statements[0].Students[0])
}

func TestStatements_OverflowIsNotTruncated(t *testing.T) {
	var students []models.StudentAssignment
	for i := 1; i <= 20; i++ {
		students = append(students, seat("Математика", "200", "9", fmt.Sprintf("%02d", i), "Фамилия", fmt.Sprintf("Имя%02d", i), ""))
	}
	svc := NewService(&fakeStore{students: students}, nil)

	set, err := svc.Statements(context.Background(), params("200", false))

	require.NoError(t, err)
	rows := set.Statements[0].Students
	require.Len(t, rows, 20)
	assert.Equal(t, "01", rows[0].Workplace)
	assert.Equal(t, "20", rows[19].Workplace)
}

func TestStatements_AllClassrooms(t *testing.T) {
	store := &fakeStore{students: mathStudents()}
	svc := NewService(store, nil)

	set, err := svc.Statements(context.Background(), params("", true))

	require.NoError(t, err)
	require.Len(t, set.Statements, 2)
	assert.Equal(t, "101", set.Statements[0].Classroom)
	assert.Equal(t, "102", set.Statements[1].Classroom)
	for _, st := range set.Statements {
		assert.GreaterOrEqual(t, len(st.Students), MinRows)
	}
	assert.Equal(t, "Кузнецов Илья", set.Statements[1].Students[0].FullName)
	assert.Equal(t, []string{"classrooms", "students", "students"}, store.calls)
}

func TestStatements_AllClassroomsNotFound(t *testing.T) {
	store := &fakeStore{students: mathStudents()}
	svc := NewService(store, nil)

	p := params("", true)
	p.Subject = "Астрономия"
	_, err := svc.Statements(context.Background(), p)

	assert.ErrorIs(t, err, models.ErrNotFound)
	var se *models.StorageError
	assert.False(t, errors.As(err, &se))
}

func TestStatements_StorageFaultAbortsExpansion(t *testing.T) {
	fault := &models.StorageError{Op: "students by classroom", Err: errors.New("connection refused")}
	store := &fakeStore{students: mathStudents(), err: fault, failOn: "students"}
	svc := NewService(store, nil)

	set, err := svc.Statements(context.Background(), params("", true))

	assert.Nil(t, set)
	assert.ErrorIs(t, err, fault)
	assert.Equal(t, []string{"classrooms", "students"}, store.calls)
}

func TestValidation_NoQueries(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *models.DocumentParams)
		want   []string
	}{
		{name: "missing subject", mutate: func(p *models.DocumentParams) { p.Subject = "" }, want: []string{"subject"}},
		{name: "missing exam date", mutate: func(p *models.DocumentParams) { p.ExamDate = "" }, want: []string{"exam_date"}},
		{name: "missing site code", mutate: func(p *models.DocumentParams) { p.SiteCode = "" }, want: []string{"site_code"}},
		{name: "missing classroom", mutate: func(p *models.DocumentParams) { p.Classroom = "" }, want: []string{"classroom"}},
		{
			name:   "everything missing",
			mutate: func(p *models.DocumentParams) { *p = models.DocumentParams{} },
			want:   []string{"subject", "exam_date", "site_code", "classroom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{students: mathStudents()}
			svc := NewService(store, nil)
			p := params("101", false)
			tt.mutate(&p)

			_, err := svc.Statements(context.Background(), p)

			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.want, verr.Fields)
			assert.Empty(t, store.calls)
		})
	}
}

func TestValidation_AggregateDocumentsIgnoreClassroom(t *testing.T) {
	store := &fakeStore{students: mathStudents()}
	svc := NewService(store, nil)

	_, err := svc.GeneralStatement(context.Background(), params("", false))
	require.NoError(t, err)

	p := params("", false)
	p.SiteCode = ""
	_, err = svc.TransferAct(context.Background(), p)
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"site_code"}, verr.Fields)
}

func TestRegistrationLists_Numbered(t *testing.T) {
	svc := NewService(&fakeStore{students: mathStudents()}, nil)

	set, err := svc.RegistrationLists(context.Background(), params("101", false))

	require.NoError(t, err)
	rows := set.Lists[0].Students
	require.Len(t, rows, MinRows)
	for i := 0; i < 3; i++ {
		assert.Equal(t, i+1, rows[i].Number)
	}
	assert.Equal(t, "M-9-001", rows[0].ParticipantCode)
	assert.Equal(t, RegistrationRow{}, rows[3])
}

func TestGeneralStatement_Counts(t *testing.T) {
	var students []models.StudentAssignment
	for i := 0; i < 3; i++ {
		students = append(students, seat("Математика", "1", "9", fmt.Sprint(i), "A", "B", ""))
	}
	for i := 3; i < 5; i++ {
		students = append(students, seat("Математика", "1", "10", fmt.Sprint(i), "A", "B", ""))
	}
	svc := NewService(&fakeStore{students: students}, nil)

	doc, err := svc.GeneralStatement(context.Background(), params("", false))

	require.NoError(t, err)
	require.Len(t, doc.Rows, MinRows)
	assert.Equal(t, GeneralRow{Classroom: "1", Parallel: "9", Planned: 3}, doc.Rows[0])
	assert.Equal(t, GeneralRow{Classroom: "1", Parallel: "10", Planned: 2}, doc.Rows[1])
	assert.Equal(t, GeneralRow{}, doc.Rows[2])
}

func TestTransferAct(t *testing.T) {
	store := &fakeStore{students: mathStudents()}
	svc := NewService(store, nil)

	act, err := svc.TransferAct(context.Background(), params("", false))

	require.NoError(t, err)
	require.Len(t, act.WorksRows, MinRows)
	require.Len(t, act.ParallelTotals, MinRows)
	assert.Equal(t, TransferRow{Parallel: "9", Classroom: "101", Count: 2}, act.WorksRows[0])
	assert.Equal(t, TransferRow{Parallel: "10", Classroom: "101", Count: 1}, act.WorksRows[1])
	assert.Equal(t, TransferRow{Parallel: "11", Classroom: "102", Count: 1}, act.WorksRows[2])
	assert.Equal(t, ParallelTotalRow{Parallel: "9", Total: 2}, act.ParallelTotals[0])
	assert.Equal(t, 4, act.TotalWorks)
	assert.Equal(t, []string{"counts by parallel", "totals"}, store.calls)
}

func TestAccompanyingSheets_AllPairs(t *testing.T) {
	store := &fakeStore{students: mathStudents()}
	svc := NewService(store, nil)

	set, err := svc.AccompanyingSheets(context.Background(), params("", true))

	require.NoError(t, err)
	require.Len(t, set.Sheets, 3)
	assert.Equal(t, "101", set.Sheets[0].Classroom)
	assert.Equal(t, "10", set.Sheets[0].Parallel)
	assert.Equal(t, "9", set.Sheets[1].Parallel)
	assert.Equal(t, 2, set.Sheets[1].Count)
	assert.Equal(t, SheetRow{Number: 1, ParticipantCode: "M-9-002"}, set.Sheets[1].Codes[0])
	assert.Equal(t, SheetRow{Number: 2, ParticipantCode: "M-9-001"}, set.Sheets[1].Codes[1])
	for _, sh := range set.Sheets {
		assert.Len(t, sh.Codes, MinRows)
	}
}

func TestAccompanyingSheets_SingleClassroom(t *testing.T) {
	svc := NewService(&fakeStore{students: mathStudents()}, nil)

	p := params("101", false)
	p.Parallel = "10"
	set, err := svc.AccompanyingSheets(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, set.Sheets, 1)
	assert.Equal(t, "Сопроводительный бланк, аудитория 101, параллель 10", set.Sheets[0].Title)
	assert.Equal(t, 1, set.Sheets[0].Count)

	empty, err := svc.AccompanyingSheets(context.Background(), params("404", false))
	require.NoError(t, err)
	require.Len(t, empty.Sheets, 1)
	assert.Equal(t, "404", empty.Sheets[0].Classroom)
	assert.Equal(t, 0, empty.Sheets[0].Count)
	assert.Len(t, empty.Sheets[0].Codes, MinRows)
}

func TestAccompanyingSheets_NotFound(t *testing.T) {
	svc := NewService(&fakeStore{}, nil)

	_, err := svc.AccompanyingSheets(context.Background(), params("", true))

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStatements_Idempotent(t *testing.T) {
	svc := NewService(&fakeStore{students: mathStudents()}, nil)

	first, err := svc.Statements(context.Background(), params("", true))
	require.NoError(t, err)
	second, err := svc.Statements(context.Background(), params("", true))
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
