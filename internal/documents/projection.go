package documents

import (
	"database/sql"
	"strings"

	"exam-docs/internal/models"
)

// StatementRow is one line of a classroom seating statement. Sheets and
// Signature are filled in by hand on the printed form.
type StatementRow struct {
	FullName  string `json:"fullName"`
	Workplace string `json:"workplace"`
	Parallel  string `json:"parallel"`
	Sheets    string `json:"sheets"`
	Signature string `json:"signature"`
}

// RegistrationRow is one line of a classroom registration list.
type RegistrationRow struct {
	Number          int    `json:"number,omitempty"`
	FullName        string `json:"fullName"`
	Parallel        string `json:"parallel"`
	Workplace       string `json:"workplace"`
	School          string `json:"school"`
	ParticipantCode string `json:"participantCode"`
	Signature       string `json:"signature"`
}

// GeneralRow is one (classroom, parallel) line of the general statement.
type GeneralRow struct {
	Classroom   string `json:"classroom"`
	Parallel    string `json:"parallel"`
	Planned     int    `json:"planned,omitempty"`
	Actual      string `json:"actual"`
	Responsible string `json:"responsible"`
	Signature   string `json:"signature"`
}

// TransferRow is one (parallel, classroom) line of a transfer act.
type TransferRow struct {
	Parallel  string `json:"parallel"`
	Classroom string `json:"classroom"`
	Count     int    `json:"count,omitempty"`
}

// ParallelTotalRow is the per-parallel total of a transfer act.
type ParallelTotalRow struct {
	Parallel string `json:"parallel"`
	Total    int    `json:"total,omitempty"`
}

// SheetRow is one participant code on an accompanying sheet.
type SheetRow struct {
	Number          int    `json:"number,omitempty"`
	ParticipantCode string `json:"participantCode"`
}

// FullName joins the non-empty name parts with single spaces.
func FullName(last, first string, middle sql.NullString) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{last, first, middle.String} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func projectStatementRow(s models.StudentAssignment) StatementRow {
	return StatementRow{
		FullName:  FullName(s.LastName, s.FirstName, s.MiddleName),
		Workplace: s.Workplace,
		Parallel:  s.Parallel,
	}
}

func projectRegistrationRow(s models.StudentAssignment) RegistrationRow {
	return RegistrationRow{
		FullName:        FullName(s.LastName, s.FirstName, s.MiddleName),
		Parallel:        s.Parallel,
		Workplace:       s.Workplace,
		School:          s.School,
		ParticipantCode: s.ParticipantCode,
	}
}

func numberRegistrationRow(r *RegistrationRow, n int) { r.Number = n }

func projectGeneralRow(c models.GroupCount) GeneralRow {
	return GeneralRow{Classroom: c.Classroom, Parallel: c.Parallel, Planned: c.Count}
}

func projectTransferRow(c models.GroupCount) TransferRow {
	return TransferRow{Parallel: c.Parallel, Classroom: c.Classroom, Count: c.Count}
}

func projectParallelTotal(c models.GroupCount) ParallelTotalRow {
	return ParallelTotalRow{Parallel: c.Parallel, Total: c.Count}
}

func projectSheetRow(code string) SheetRow {
	return SheetRow{ParticipantCode: code}
}

func numberSheetRow(r *SheetRow, n int) { r.Number = n }
