// Seeder command for loading a demo seating plan into the "Ученики" table.
//
// SAFETY: This command ONLY runs when:
//   - APP_ENV=development
//   - --confirm flag is provided
//
// Usage:
//   APP_ENV=development go run ./cmd/seed --per-classroom 12 --confirm
//
// --reset empties the table first. The table is created when missing.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	"exam-docs/internal/config"
	"exam-docs/internal/db"
	"exam-docs/internal/logging"

	"go.uber.org/zap"
)

const createTable = `
CREATE TABLE IF NOT EXISTS "Ученики" (
	"фимилия"        text NOT NULL,
	"имя"            text NOT NULL,
	"отчество"       text,
	"номер_кабинета" integer,
	"предмет"        text,
	"паралель"       text,
	"номер_места"    integer,
	"код_участника"  text,
	"код_ОО"         text
)`

const insertStudent = `
INSERT INTO "Ученики"
	("фимилия", "имя", "отчество", "номер_кабинета", "предмет", "паралель", "номер_места", "код_участника", "код_ОО")
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// seat is one generated assignment.
type seat struct {
	LastName, FirstName string
	MiddleName          sql.NullString
	Classroom           int
	Subject             string
	Parallel            string
	Workplace           int
	ParticipantCode     string
	School              string
}

var (
	lastNames   = []string{"Иванов", "Петров", "Смирнов", "Кузнецов", "Попов", "Соколов", "Лебедев", "Козлов", "Новиков", "Морозов"}
	firstNames  = []string{"Александр", "Дмитрий", "Максим", "Илья", "Артём", "Михаил", "Кирилл", "Егор"}
	middleNames = []string{"Сергеевич", "Андреевич", "Игоревич", "", "Олегович"}
	plan        = []struct {
		Subject    string
		Prefix     string
		Classrooms []int
		Parallels  []string
	}{
		{Subject: "Математика", Prefix: "M", Classrooms: []int{101, 102, 103}, Parallels: []string{"9", "10", "11"}},
		{Subject: "Физика", Prefix: "F", Classrooms: []int{201, 202}, Parallels: []string{"10", "11"}},
		{Subject: "Информатика", Prefix: "I", Classrooms: []int{301}, Parallels: []string{"9", "11"}},
	}
)

// buildSeats lays out perClassroom participants in every planned classroom,
// cycling through the parallels so each classroom holds several groups.
func buildSeats(perClassroom int) []seat {
	var seats []seat
	n := 0
	for _, p := range plan {
		seq := make(map[string]int)
		for _, classroom := range p.Classrooms {
			for place := 1; place <= perClassroom; place++ {
				parallel := p.Parallels[(place-1)%len(p.Parallels)]
				seq[parallel]++
				middle := middleNames[n%len(middleNames)]
				seats = append(seats, seat{
					LastName:        lastNames[n%len(lastNames)],
					FirstName:       firstNames[(n/len(lastNames))%len(firstNames)],
					MiddleName:      sql.NullString{String: middle, Valid: middle != ""},
					Classroom:       classroom,
					Subject:         p.Subject,
					Parallel:        parallel,
					Workplace:       place,
					ParticipantCode: fmt.Sprintf("%s-%s-%03d", p.Prefix, parallel, seq[parallel]),
					School:          fmt.Sprintf("OO-%d", 1+n%4),
				})
				n++
			}
		}
	}
	return seats
}

func main() {
	perClassroom := flag.Int("per-classroom", 12, "Number of participants per classroom")
	reset := flag.Bool("reset", false, "Delete existing rows before seeding")
	confirm := flag.Bool("confirm", false, "Confirm seeding (required)")
	flag.Parse()

	cfg := config.Load()

	// Safety check: APP_ENV must be development
	if cfg.AppEnv != "development" {
		log.Fatalf("ERROR: Seeder can only run in development environment. Set APP_ENV=development and try again.")
	}
	// Safety check: --confirm flag required
	if !*confirm {
		log.Fatalf("ERROR: --confirm flag is required to run seeder. Usage: APP_ENV=development go run ./cmd/seed --per-classroom %d --confirm", *perClassroom)
	}
	if *perClassroom <= 0 {
		log.Fatalf("ERROR: --per-classroom must be positive")
	}

	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	conn, err := db.Connect(ctx, cfg.DatabaseURL, db.Options{MaxOpenConns: 1})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	seats := buildSeats(*perClassroom)
	if err := load(ctx, conn, seats, *reset); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}

	for _, p := range plan {
		logger.Info("seeded subject",
			zap.String("subject", p.Subject),
			zap.Ints("classrooms", p.Classrooms),
			zap.Strings("parallels", p.Parallels))
	}
	logger.Info("seeding complete", zap.Int("rows", len(seats)))
}

// load writes every seat in one transaction; a failure leaves the table as
// it was.
func load(ctx context.Context, conn *sql.DB, seats []seat, reset bool) error {
	if _, err := conn.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if reset {
		if _, err := tx.ExecContext(ctx, `DELETE FROM "Ученики"`); err != nil {
			return fmt.Errorf("failed to reset table: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, insertStudent)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range seats {
		if _, err := stmt.ExecContext(ctx, s.LastName, s.FirstName, s.MiddleName, s.Classroom,
			s.Subject, s.Parallel, s.Workplace, s.ParticipantCode, s.School); err != nil {
			return fmt.Errorf("failed to insert row %d (%s %s): %w", i+1, s.LastName, s.FirstName, err)
		}
	}

	return tx.Commit()
}
