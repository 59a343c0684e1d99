package directory

import (
	"context"
	"fmt"

	"github.com/user/cartable/internal/types"
)

// Seed helpers insert fixture rows. They back the tests and the local chat
// REPL; the serve daemon only reads.

func (s *SQLite) AddParent(ctx context.Context, p types.Parent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO parents (id, first_name, last_name, contact, channel, reminders)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(p.ID), p.FirstName, p.LastName, p.Contact, p.Channel, boolInt(p.Reminders))
	if err != nil {
		return fmt.Errorf("insert parent: %w", err)
	}
	return nil
}

func (s *SQLite) AddSchool(ctx context.Context, sc types.School) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schools (id, name) VALUES (?, ?)`, string(sc.ID), sc.Name)
	if err != nil {
		return fmt.Errorf("insert school: %w", err)
	}
	return nil
}

func (s *SQLite) AddStudent(ctx context.Context, st types.Student) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO students (id, parent_id, school_id, first_name, last_name, class)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(st.ID), string(st.ParentID), nullIfEmpty(string(st.SchoolID)),
		st.FirstName, st.LastName, st.Class)
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

func (s *SQLite) AddGrade(ctx context.Context, g types.Grade) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO grades (student_id, subject, score) VALUES (?, ?, ?)`,
		string(g.StudentID), g.Subject, g.Score)
	if err != nil {
		return fmt.Errorf("insert grade: %w", err)
	}
	return nil
}

func (s *SQLite) AddAttendance(ctx context.Context, r types.AttendanceRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance (student_id, day, status) VALUES (?, ?, ?)`,
		string(r.StudentID), r.Date.Format(dayFormat), r.Status)
	if err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

func (s *SQLite) AddHomework(ctx context.Context, hw types.HomeworkItem) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO homework (student_id, subject, description, due_day) VALUES (?, ?, ?, ?)`,
		string(hw.StudentID), hw.Subject, hw.Description, hw.DueDate.Format(dayFormat))
	if err != nil {
		return fmt.Errorf("insert homework: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
