package models

import "database/sql"

// StudentAssignment is one row of the source table: a student seated at a
// workplace in a classroom for one subject.
type StudentAssignment struct {
	LastName        string
	FirstName       string
	MiddleName      sql.NullString
	Classroom       string
	Subject         string
	Parallel        string
	Workplace       string
	ParticipantCode string
	School          string
}

// GroupKey partitions assignments into separate documents. Parallel is
// empty when documents are split by classroom only.
type GroupKey struct {
	Classroom string `json:"classroom"`
	Parallel  string `json:"parallel,omitempty"`
}

// GroupCount is one row of a COUNT(*) aggregate.
type GroupCount struct {
	Classroom string
	Parallel  string
	Count     int
}

// ParticipantGroup is the ordered list of participant codes of one
// (classroom, parallel) group.
type ParticipantGroup struct {
	Key   GroupKey
	Codes []string
}

// DocumentParams are the filter parameters every document request carries.
type DocumentParams struct {
	Subject       string `json:"subject" validate:"required"`
	ExamDate      string `json:"exam_date" validate:"required"`
	SiteCode      string `json:"site_code" validate:"required"`
	Classroom     string `json:"classroom,omitempty" validate:"required_unless=AllClassrooms true"`
	Parallel      string `json:"parallel,omitempty"`
	AllClassrooms bool   `json:"all_classrooms,omitempty"`
}
