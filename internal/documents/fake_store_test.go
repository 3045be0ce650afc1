package documents

import (
	"context"
	"sort"

	"exam-docs/internal/models"
)

// fakeStore answers queries from an in-memory slice of assignments and
// counts how many queries were issued.
type fakeStore struct {
	students []models.StudentAssignment
	err      error
	failOn   string
	calls    []string
}

func (f *fakeStore) record(op string) error {
	f.calls = append(f.calls, op)
	if f.err != nil && (f.failOn == "" || f.failOn == op) {
		return f.err
	}
	return nil
}

func (f *fakeStore) ClassroomsBySubject(_ context.Context, subject string) ([]string, error) {
	if err := f.record("classrooms"); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, s := range f.students {
		if s.Subject == subject && !seen[s.Classroom] {
			seen[s.Classroom] = true
			out = append(out, s.Classroom)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeStore) StudentsByClassroom(_ context.Context, classroom, subject string) ([]models.StudentAssignment, error) {
	if err := f.record("students"); err != nil {
		return nil, err
	}
	var out []models.StudentAssignment
	for _, s := range f.students {
		if s.Classroom == classroom && s.Subject == subject {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Workplace < out[j].Workplace })
	return out, nil
}

func (f *fakeStore) counts(subject string, key func(models.StudentAssignment) models.GroupCount, less func(a, b models.GroupCount) bool) []models.GroupCount {
	idx := map[models.GroupCount]int{}
	var out []models.GroupCount
	for _, s := range f.students {
		if s.Subject != subject {
			continue
		}
		k := key(s)
		if i, ok := idx[k]; ok {
			out[i].Count++
			continue
		}
		idx[k] = len(out)
		g := k
		g.Count = 1
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (f *fakeStore) CountsByClassroomParallel(_ context.Context, subject string) ([]models.GroupCount, error) {
	if err := f.record("counts by classroom"); err != nil {
		return nil, err
	}
	return f.counts(subject,
		func(s models.StudentAssignment) models.GroupCount {
			return models.GroupCount{Classroom: s.Classroom, Parallel: s.Parallel}
		},
		func(a, b models.GroupCount) bool {
			if a.Classroom != b.Classroom {
				return a.Classroom < b.Classroom
			}
			return len(a.Parallel) < len(b.Parallel) || (len(a.Parallel) == len(b.Parallel) && a.Parallel < b.Parallel)
		}), nil
}

func (f *fakeStore) CountsByParallelClassroom(_ context.Context, subject string) ([]models.GroupCount, error) {
	if err := f.record("counts by parallel"); err != nil {
		return nil, err
	}
	return f.counts(subject,
		func(s models.StudentAssignment) models.GroupCount {
			return models.GroupCount{Classroom: s.Classroom, Parallel: s.Parallel}
		},
		func(a, b models.GroupCount) bool {
			if a.Parallel != b.Parallel {
				return len(a.Parallel) < len(b.Parallel) || (len(a.Parallel) == len(b.Parallel) && a.Parallel < b.Parallel)
			}
			return a.Classroom < b.Classroom
		}), nil
}

func (f *fakeStore) TotalsByParallel(_ context.Context, subject string) ([]models.GroupCount, error) {
	if err := f.record("totals"); err != nil {
		return nil, err
	}
	return f.counts(subject,
		func(s models.StudentAssignment) models.GroupCount {
			return models.GroupCount{Parallel: s.Parallel}
		},
		func(a, b models.GroupCount) bool {
			return len(a.Parallel) < len(b.Parallel) || (len(a.Parallel) == len(b.Parallel) && a.Parallel < b.Parallel)
		}), nil
}

func (f *fakeStore) ClassroomParallels(_ context.Context, subject, classroom, parallel string) ([]models.GroupKey, error) {
	if err := f.record("pairs"); err != nil {
		return nil, err
	}
	seen := map[models.GroupKey]bool{}
	var out []models.GroupKey
	for _, s := range f.students {
		if s.Subject != subject || (classroom != "" && s.Classroom != classroom) || (parallel != "" && s.Parallel != parallel) {
			continue
		}
		k := models.GroupKey{Classroom: s.Classroom, Parallel: s.Parallel}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Classroom != out[j].Classroom {
			return out[i].Classroom < out[j].Classroom
		}
		return out[i].Parallel < out[j].Parallel
	})
	return out, nil
}

func (f *fakeStore) ParticipantCodes(_ context.Context, subject string, key models.GroupKey) (models.ParticipantGroup, error) {
	group := models.ParticipantGroup{Key: key}
	if err := f.record("codes"); err != nil {
		return group, err
	}
	for _, s := range f.students {
		if s.Subject == subject && s.Classroom == key.Classroom && s.Parallel == key.Parallel {
			group.Codes = append(group.Codes, s.ParticipantCode)
		}
	}
	return group, nil
}

func seat(subject, classroom, parallel, workplace, last, first, code string) models.StudentAssignment {
	return models.StudentAssignment{
		Subject:         subject,
		Classroom:       classroom,
		Parallel:        parallel,
		Workplace:       workplace,
		LastName:        last,
		FirstName:       first,
		ParticipantCode: code,
	}
}
