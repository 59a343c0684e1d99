package directory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/cartable/internal/types"
)

func openTestDirectory(t *testing.T) *SQLite {
	t.Helper()
	dir, err := Open(filepath.Join(t.TempDir(), "cartable.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { dir.Close() })
	return dir
}

func seedFamily(t *testing.T, dir *SQLite) (types.Parent, types.Student, types.School) {
	t.Helper()
	ctx := context.Background()

	school := types.School{ID: "sc-1", Name: "Collège Jean Moulin"}
	if err := dir.AddSchool(ctx, school); err != nil {
		t.Fatal(err)
	}

	parent := types.Parent{
		ID: "p-1", FirstName: "Sophie", LastName: "Dupont",
		Contact: "+33612345678", Channel: "whatsapp", Reminders: true,
	}
	if err := dir.AddParent(ctx, parent); err != nil {
		t.Fatal(err)
	}

	student := types.Student{
		ID: "st-1", ParentID: parent.ID, SchoolID: school.ID,
		FirstName: "Marie", LastName: "Dupont", Class: "5ème B",
	}
	if err := dir.AddStudent(ctx, student); err != nil {
		t.Fatal(err)
	}
	return parent, student, school
}

func TestAuthenticateSuffixMatching(t *testing.T) {
	dir := openTestDirectory(t)
	seedFamily(t, dir)
	ctx := context.Background()

	tests := []struct {
		contact string
		wantHit bool
	}{
		{"+33612345678", true},
		{"33612345678", true},
		// last 9 digits match despite a different prefix
		{"0612345678", true},
		{"whatsapp formatted +33 6 12 34 56 78", true},
		{"+33700000000", false},
		{"", false},
		{"no digits here", false},
	}
	for _, tt := range tests {
		p, err := dir.Authenticate(ctx, tt.contact)
		if err != nil {
			t.Fatalf("Authenticate(%q): %v", tt.contact, err)
		}
		if (p != nil) != tt.wantHit {
			t.Errorf("Authenticate(%q) hit = %v, want %v", tt.contact, p != nil, tt.wantHit)
		}
	}
}

func TestStudentsOf(t *testing.T) {
	dir := openTestDirectory(t)
	parent, student, _ := seedFamily(t, dir)
	ctx := context.Background()

	children, err := dir.StudentsOf(ctx, parent.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(children) != 1 || children[0].ID != student.ID {
		t.Fatalf("got %+v", children)
	}
	if children[0].Class != "5ème B" {
		t.Errorf("class = %q", children[0].Class)
	}

	none, err := dir.StudentsOf(ctx, "p-missing")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("expected no children, got %+v", none)
	}
}

func TestGradesRoundtrip(t *testing.T) {
	dir := openTestDirectory(t)
	_, student, _ := seedFamily(t, dir)
	ctx := context.Background()

	for _, g := range []types.Grade{
		{StudentID: student.ID, Subject: "maths", Score: 15.5},
		{StudentID: student.ID, Subject: "histoire", Score: 12},
	} {
		if err := dir.AddGrade(ctx, g); err != nil {
			t.Fatal(err)
		}
	}

	grades, err := dir.GradesOf(ctx, student.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(grades) != 2 {
		t.Fatalf("got %d grades", len(grades))
	}
	// Insertion order is preserved.
	if grades[0].Subject != "maths" || grades[0].Score != 15.5 {
		t.Errorf("got %+v", grades[0])
	}
}

func TestAttendanceOnDay(t *testing.T) {
	dir := openTestDirectory(t)
	_, student, _ := seedFamily(t, dir)
	ctx := context.Background()

	yesterday := time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)
	if err := dir.AddAttendance(ctx, types.AttendanceRecord{
		StudentID: student.ID, Date: yesterday, Status: "absent",
	}); err != nil {
		t.Fatal(err)
	}

	// Day matching ignores the time of day.
	records, err := dir.AttendanceOn(ctx, student.ID, time.Date(2024, 3, 14, 23, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Status != "absent" {
		t.Fatalf("got %+v", records)
	}

	records, err = dir.AttendanceOn(ctx, student.ID, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %+v", records)
	}
}

func TestHomeworkRoundtrip(t *testing.T) {
	dir := openTestDirectory(t)
	_, student, _ := seedFamily(t, dir)
	ctx := context.Background()

	due := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	if err := dir.AddHomework(ctx, types.HomeworkItem{
		StudentID: student.ID, Subject: "maths", Description: "Exercices p.52", DueDate: due,
	}); err != nil {
		t.Fatal(err)
	}

	items, err := dir.HomeworkOf(ctx, student.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}
	if !items[0].DueDate.Equal(due) {
		t.Errorf("due = %v, want %v", items[0].DueDate, due)
	}
}

func TestSchoolOf(t *testing.T) {
	dir := openTestDirectory(t)
	_, student, school := seedFamily(t, dir)
	ctx := context.Background()

	got, err := dir.SchoolOf(ctx, student.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Name != school.Name {
		t.Fatalf("got %+v", got)
	}

	// A student without a school yields (nil, nil).
	orphan := types.Student{ID: "st-2", ParentID: "p-1", FirstName: "Paul", LastName: "Dupont"}
	if err := dir.AddStudent(ctx, orphan); err != nil {
		t.Fatal(err)
	}
	got, err = dir.SchoolOf(ctx, orphan.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestParentsReminderFlag(t *testing.T) {
	dir := openTestDirectory(t)
	seedFamily(t, dir)
	ctx := context.Background()

	parents, err := dir.Parents(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(parents) != 1 || !parents[0].Reminders {
		t.Fatalf("got %+v", parents)
	}
}
