package models

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Queryer is the part of *sql.DB the store needs.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Store runs the read-only queries behind every document. It never writes
// and never opens a transaction; each call borrows one pooled connection.
type Store struct {
	db Queryer
}

func NewStore(db Queryer) *Store {
	return &Store{db: db}
}

const (
	queryClassrooms = `
		SELECT DISTINCT ` + colClassroom + `
		FROM ` + tableStudents + `
		WHERE ` + colClassroom + ` IS NOT NULL
		ORDER BY ` + colClassroom

	querySubjects = `
		SELECT DISTINCT ` + colSubject + `
		FROM ` + tableStudents + `
		WHERE ` + colSubject + ` IS NOT NULL
		ORDER BY ` + colSubject

	querySubjectsByClassroom = `
		SELECT DISTINCT ` + colSubject + `
		FROM ` + tableStudents + `
		WHERE ` + colClassroom + `::text = $1 AND ` + colSubject + ` IS NOT NULL
		ORDER BY ` + colSubject

	queryClassroomsBySubject = `
		SELECT DISTINCT ` + colClassroom + `
		FROM ` + tableStudents + `
		WHERE ` + colSubject + ` = $1 AND ` + colClassroom + ` IS NOT NULL
		ORDER BY ` + colClassroom

	queryStudentsByClassroom = `
		SELECT
			` + colLastName + `,
			` + colFirstName + `,
			` + colMiddleName + `,
			` + colWorkplace + `,
			` + colParallel + `,
			` + colParticipantCode + `,
			` + colSchool + `
		FROM ` + tableStudents + `
		WHERE ` + colClassroom + `::text = $1 AND ` + colSubject + ` = $2
		ORDER BY ` + colWorkplace

	queryCountsByClassroomParallel = `
		SELECT ` + colClassroom + `, ` + colParallel + `, COUNT(*)
		FROM ` + tableStudents + `
		WHERE ` + colSubject + ` = $1
		GROUP BY ` + colClassroom + `, ` + colParallel + `
		ORDER BY ` + colClassroom + `, ` + colParallel

	queryCountsByParallelClassroom = `
		SELECT ` + colParallel + `, ` + colClassroom + `, COUNT(*)
		FROM ` + tableStudents + `
		WHERE ` + colSubject + ` = $1
		GROUP BY ` + colParallel + `, ` + colClassroom + `
		ORDER BY ` + colParallel + `, ` + colClassroom

	queryTotalsByParallel = `
		SELECT ` + colParallel + `, COUNT(*)
		FROM ` + tableStudents + `
		WHERE ` + colSubject + ` = $1
		GROUP BY ` + colParallel + `
		ORDER BY ` + colParallel

	queryClassroomParallels = `
		SELECT DISTINCT ` + colClassroom + `, ` + colParallel + `
		FROM ` + tableStudents + `
		WHERE ` + colSubject + ` = $1 AND ` + colClassroom + ` IS NOT NULL`

	queryParticipantCodes = `
		SELECT COALESCE(array_agg(` + colParticipantCode + ` ORDER BY ` + colWorkplace + `, ` + colParticipantCode + `)
			FILTER (WHERE ` + colParticipantCode + ` IS NOT NULL), '{}')::text[]
		FROM ` + tableStudents + `
		WHERE ` + colSubject + ` = $1
			AND ` + colClassroom + `::text = $2
			AND COALESCE(` + colParallel + `::text, '') = $3`
)

// Classrooms returns every classroom that has at least one assignment.
func (s *Store) Classrooms(ctx context.Context) ([]string, error) {
	return s.strings(ctx, "classrooms", queryClassrooms)
}

// Subjects returns every subject, ordered by name.
func (s *Store) Subjects(ctx context.Context) ([]string, error) {
	return s.strings(ctx, "subjects", querySubjects)
}

// SubjectsByClassroom returns the subjects sat in one classroom.
func (s *Store) SubjectsByClassroom(ctx context.Context, classroom string) ([]string, error) {
	return s.strings(ctx, "subjects by classroom", querySubjectsByClassroom, classroom)
}

// ClassroomsBySubject returns the classrooms used for a subject. It drives
// expansion of per-classroom documents.
func (s *Store) ClassroomsBySubject(ctx context.Context, subject string) ([]string, error) {
	return s.strings(ctx, "classrooms by subject", queryClassroomsBySubject, subject)
}

// StudentsByClassroom returns the assignments of one classroom for a
// subject, in seating order.
func (s *Store) StudentsByClassroom(ctx context.Context, classroom, subject string) ([]StudentAssignment, error) {
	const op = "students by classroom"
	rows, err := s.db.QueryContext(ctx, queryStudentsByClassroom, classroom, subject)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer rows.Close()

	var students []StudentAssignment
	for rows.Next() {
		var last, first, workplace, parallel, code, school sql.NullString
		st := StudentAssignment{Classroom: classroom, Subject: subject}
		if err := rows.Scan(&last, &first, &st.MiddleName, &workplace, &parallel, &code, &school); err != nil {
			return nil, storageError(op, fmt.Errorf("failed to scan student: %w", err))
		}
		st.LastName = last.String
		st.FirstName = first.String
		st.Workplace = workplace.String
		st.Parallel = parallel.String
		st.ParticipantCode = code.String
		st.School = school.String
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(op, err)
	}
	return students, nil
}

// CountsByClassroomParallel counts assignments per (classroom, parallel),
// ordered by classroom then parallel.
func (s *Store) CountsByClassroomParallel(ctx context.Context, subject string) ([]GroupCount, error) {
	const op = "counts by classroom and parallel"
	rows, err := s.db.QueryContext(ctx, queryCountsByClassroomParallel, subject)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer rows.Close()

	var counts []GroupCount
	for rows.Next() {
		var classroom, parallel sql.NullString
		var gc GroupCount
		if err := rows.Scan(&classroom, &parallel, &gc.Count); err != nil {
			return nil, storageError(op, fmt.Errorf("failed to scan count: %w", err))
		}
		gc.Classroom, gc.Parallel = classroom.String, parallel.String
		counts = append(counts, gc)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(op, err)
	}
	return counts, nil
}

// CountsByParallelClassroom counts assignments per (parallel, classroom),
// ordered by parallel then classroom.
func (s *Store) CountsByParallelClassroom(ctx context.Context, subject string) ([]GroupCount, error) {
	const op = "counts by parallel and classroom"
	rows, err := s.db.QueryContext(ctx, queryCountsByParallelClassroom, subject)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer rows.Close()

	var counts []GroupCount
	for rows.Next() {
		var classroom, parallel sql.NullString
		var gc GroupCount
		if err := rows.Scan(&parallel, &classroom, &gc.Count); err != nil {
			return nil, storageError(op, fmt.Errorf("failed to scan count: %w", err))
		}
		gc.Classroom, gc.Parallel = classroom.String, parallel.String
		counts = append(counts, gc)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(op, err)
	}
	return counts, nil
}

// TotalsByParallel counts assignments per parallel. Classroom is left empty.
func (s *Store) TotalsByParallel(ctx context.Context, subject string) ([]GroupCount, error) {
	const op = "totals by parallel"
	rows, err := s.db.QueryContext(ctx, queryTotalsByParallel, subject)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer rows.Close()

	var counts []GroupCount
	for rows.Next() {
		var parallel sql.NullString
		var gc GroupCount
		if err := rows.Scan(&parallel, &gc.Count); err != nil {
			return nil, storageError(op, fmt.Errorf("failed to scan total: %w", err))
		}
		gc.Parallel = parallel.String
		counts = append(counts, gc)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(op, err)
	}
	return counts, nil
}

// ClassroomParallels returns the distinct (classroom, parallel) pairs of a
// subject. Empty classroom or parallel arguments disable that filter.
func (s *Store) ClassroomParallels(ctx context.Context, subject, classroom, parallel string) ([]GroupKey, error) {
	const op = "classroom parallels"
	query := queryClassroomParallels
	args := []interface{}{subject}
	argIndex := 2

	if classroom != "" {
		query += fmt.Sprintf(" AND %s::text = $%d", colClassroom, argIndex)
		args = append(args, classroom)
		argIndex++
	}
	if parallel != "" {
		query += fmt.Sprintf(" AND %s::text = $%d", colParallel, argIndex)
		args = append(args, parallel)
		argIndex++
	}
	query += fmt.Sprintf(" ORDER BY %s, %s", colClassroom, colParallel)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer rows.Close()

	var keys []GroupKey
	for rows.Next() {
		var c, p sql.NullString
		if err := rows.Scan(&c, &p); err != nil {
			return nil, storageError(op, fmt.Errorf("failed to scan group key: %w", err))
		}
		keys = append(keys, GroupKey{Classroom: c.String, Parallel: p.String})
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(op, err)
	}
	return keys, nil
}

// ParticipantCodes collects the participant codes of one (classroom,
// parallel) group in seating order.
func (s *Store) ParticipantCodes(ctx context.Context, subject string, key GroupKey) (ParticipantGroup, error) {
	const op = "participant codes"
	group := ParticipantGroup{Key: key}

	rows, err := s.db.QueryContext(ctx, queryParticipantCodes, subject, key.Classroom, key.Parallel)
	if err != nil {
		return group, storageError(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var codes []string
		if err := rows.Scan(pq.Array(&codes)); err != nil {
			return group, storageError(op, fmt.Errorf("failed to scan participant codes: %w", err))
		}
		group.Codes = append(group.Codes, codes...)
	}
	if err := rows.Err(); err != nil {
		return group, storageError(op, err)
	}
	return group, nil
}

func (s *Store) strings(ctx context.Context, op, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, storageError(op, fmt.Errorf("failed to scan value: %w", err))
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(op, err)
	}
	return values, nil
}
