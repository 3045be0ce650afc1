package models

// Storage identifiers of the source table. The table is loaded by an
// external process with localized names; nothing outside this file should
// spell them out.
const (
	tableStudents = `"Ученики"`

	colLastName        = `"фимилия"`
	colFirstName       = `"имя"`
	colMiddleName      = `"отчество"`
	colClassroom       = `"номер_кабинета"`
	colSubject         = `"предмет"`
	colParallel        = `"паралель"`
	colWorkplace       = `"номер_места"`
	colParticipantCode = `"код_участника"`
	colSchool          = `"код_ОО"`
)
