// Package directory is the sqlite-backed school data source: parents,
// students, grades, attendance, homework, and schools. It implements
// types.Directory; lookups that find nothing return nil, not an error.
package directory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/user/cartable/internal/types"
)

const dayFormat = "2006-01-02"

// SQLite implements types.Directory over a sqlite database file.
type SQLite struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dbPath and ensures the
// schema exists.
func Open(dbPath string) (*SQLite, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := dbPath + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS parents (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		contact TEXT NOT NULL,
		channel TEXT NOT NULL DEFAULT 'whatsapp',
		reminders INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS schools (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		parent_id TEXT NOT NULL REFERENCES parents(id),
		school_id TEXT REFERENCES schools(id),
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		class TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_students_parent ON students(parent_id);
	CREATE TABLE IF NOT EXISTS grades (
		student_id TEXT NOT NULL REFERENCES students(id),
		subject TEXT NOT NULL,
		score REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_grades_student ON grades(student_id);
	CREATE TABLE IF NOT EXISTS attendance (
		student_id TEXT NOT NULL REFERENCES students(id),
		day TEXT NOT NULL,
		status TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_attendance_student ON attendance(student_id);
	CREATE TABLE IF NOT EXISTS homework (
		student_id TEXT NOT NULL REFERENCES students(id),
		subject TEXT NOT NULL,
		description TEXT NOT NULL,
		due_day TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_homework_student ON homework(student_id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Authenticate matches the sender's contact against registered parents by
// digit suffix: full number, then last 10, 9, and 8 digits. This tolerates
// country-code and formatting differences between the registered number
// and the transport's sender address. Returns (nil, nil) when no parent
// matches.
func (s *SQLite) Authenticate(ctx context.Context, contact string) (*types.Parent, error) {
	parents, err := s.Parents(ctx)
	if err != nil {
		return nil, err
	}

	incoming := digitsOf(contact)
	if incoming == "" {
		return nil, nil
	}
	for i := range parents {
		registered := digitsOf(parents[i].Contact)
		if registered == "" {
			continue
		}
		if registered == incoming ||
			suffixEqual(registered, incoming, 10) ||
			suffixEqual(registered, incoming, 9) ||
			suffixEqual(registered, incoming, 8) {
			return &parents[i], nil
		}
	}
	return nil, nil
}

// Parents returns all registered parents.
func (s *SQLite) Parents(ctx context.Context) ([]types.Parent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, contact, channel, reminders FROM parents`)
	if err != nil {
		return nil, fmt.Errorf("query parents: %w", err)
	}
	defer rows.Close()

	var out []types.Parent
	for rows.Next() {
		var p types.Parent
		var reminders int
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Contact, &p.Channel, &reminders); err != nil {
			return nil, fmt.Errorf("scan parent row: %w", err)
		}
		p.Reminders = reminders != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

// StudentsOf returns the children registered under the parent.
func (s *SQLite) StudentsOf(ctx context.Context, parent types.ParentID) ([]types.Student, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, parent_id, COALESCE(school_id, ''), first_name, last_name, class
		 FROM students WHERE parent_id = ? ORDER BY first_name`, string(parent))
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var out []types.Student
	for rows.Next() {
		var st types.Student
		if err := rows.Scan(&st.ID, &st.ParentID, &st.SchoolID, &st.FirstName, &st.LastName, &st.Class); err != nil {
			return nil, fmt.Errorf("scan student row: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// GradesOf returns a student's grades.
func (s *SQLite) GradesOf(ctx context.Context, student types.StudentID) ([]types.Grade, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT student_id, subject, score FROM grades WHERE student_id = ? ORDER BY rowid`, string(student))
	if err != nil {
		return nil, fmt.Errorf("query grades: %w", err)
	}
	defer rows.Close()

	var out []types.Grade
	for rows.Next() {
		var g types.Grade
		if err := rows.Scan(&g.StudentID, &g.Subject, &g.Score); err != nil {
			return nil, fmt.Errorf("scan grade row: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// AttendanceOf returns all of a student's attendance records.
func (s *SQLite) AttendanceOf(ctx context.Context, student types.StudentID) ([]types.AttendanceRecord, error) {
	return s.queryAttendance(ctx,
		`SELECT student_id, day, status FROM attendance WHERE student_id = ?`, string(student))
}

// AttendanceOn returns a student's attendance records for one calendar day.
func (s *SQLite) AttendanceOn(ctx context.Context, student types.StudentID, day time.Time) ([]types.AttendanceRecord, error) {
	return s.queryAttendance(ctx,
		`SELECT student_id, day, status FROM attendance WHERE student_id = ? AND day = ?`,
		string(student), day.Format(dayFormat))
}

func (s *SQLite) queryAttendance(ctx context.Context, query string, args ...any) ([]types.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	var out []types.AttendanceRecord
	for rows.Next() {
		var r types.AttendanceRecord
		var day string
		if err := rows.Scan(&r.StudentID, &day, &r.Status); err != nil {
			return nil, fmt.Errorf("scan attendance row: %w", err)
		}
		r.Date, err = time.Parse(dayFormat, day)
		if err != nil {
			return nil, fmt.Errorf("parse attendance day %q: %w", day, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// HomeworkOf returns a student's homework items.
func (s *SQLite) HomeworkOf(ctx context.Context, student types.StudentID) ([]types.HomeworkItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT student_id, subject, description, due_day FROM homework WHERE student_id = ?`, string(student))
	if err != nil {
		return nil, fmt.Errorf("query homework: %w", err)
	}
	defer rows.Close()

	var out []types.HomeworkItem
	for rows.Next() {
		var hw types.HomeworkItem
		var due string
		if err := rows.Scan(&hw.StudentID, &hw.Subject, &hw.Description, &due); err != nil {
			return nil, fmt.Errorf("scan homework row: %w", err)
		}
		hw.DueDate, err = time.Parse(dayFormat, due)
		if err != nil {
			return nil, fmt.Errorf("parse homework due day %q: %w", due, err)
		}
		out = append(out, hw)
	}
	return out, rows.Err()
}

// SchoolOf returns the school a student is enrolled at, or (nil, nil) when
// the student has no school on record.
func (s *SQLite) SchoolOf(ctx context.Context, student types.StudentID) (*types.School, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT sc.id, sc.name FROM schools sc
		 JOIN students st ON st.school_id = sc.id
		 WHERE st.id = ?`, string(student))

	var sc types.School
	err := row.Scan(&sc.ID, &sc.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan school row: %w", err)
	}
	return &sc, nil
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func suffixEqual(a, b string, n int) bool {
	if len(a) < n || len(b) < n {
		return false
	}
	return a[len(a)-n:] == b[len(b)-n:]
}
