package scheduler

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/user/cartable/internal/compose"
	"github.com/user/cartable/internal/delivery"
	"github.com/user/cartable/internal/session"
	"github.com/user/cartable/internal/types"
)

type fakeDirectory struct {
	parents  []types.Parent
	children map[types.ParentID][]types.Student
	homework map[types.StudentID][]types.HomeworkItem
}

func (f *fakeDirectory) Authenticate(ctx context.Context, contact string) (*types.Parent, error) {
	return nil, nil
}

func (f *fakeDirectory) Parents(ctx context.Context) ([]types.Parent, error) {
	return f.parents, nil
}

func (f *fakeDirectory) StudentsOf(ctx context.Context, parent types.ParentID) ([]types.Student, error) {
	return f.children[parent], nil
}

func (f *fakeDirectory) GradesOf(ctx context.Context, student types.StudentID) ([]types.Grade, error) {
	return nil, nil
}

func (f *fakeDirectory) AttendanceOf(ctx context.Context, student types.StudentID) ([]types.AttendanceRecord, error) {
	return nil, nil
}

func (f *fakeDirectory) AttendanceOn(ctx context.Context, student types.StudentID, day time.Time) ([]types.AttendanceRecord, error) {
	return nil, nil
}

func (f *fakeDirectory) HomeworkOf(ctx context.Context, student types.StudentID) ([]types.HomeworkItem, error) {
	return f.homework[student], nil
}

func (f *fakeDirectory) SchoolOf(ctx context.Context, student types.StudentID) (*types.School, error) {
	return nil, nil
}

func TestRemindHomeworkDeliversDigests(t *testing.T) {
	optedIn := types.Parent{
		ID: "p-1", FirstName: "Sophie", Contact: "+33612345678",
		Channel: "whatsapp", Reminders: true,
	}
	optedOut := types.Parent{
		ID: "p-2", FirstName: "Karim", Contact: "+33698765432",
		Channel: "whatsapp", Reminders: false,
	}
	marie := types.Student{ID: "st-1", ParentID: optedIn.ID, FirstName: "Marie", LastName: "Dupont"}
	paul := types.Student{ID: "st-2", ParentID: optedOut.ID, FirstName: "Paul", LastName: "Martin"}

	soon := time.Now().Add(12 * time.Hour)
	dir := &fakeDirectory{
		parents: []types.Parent{optedIn, optedOut},
		children: map[types.ParentID][]types.Student{
			optedIn.ID:  {marie},
			optedOut.ID: {paul},
		},
		homework: map[types.StudentID][]types.HomeworkItem{
			marie.ID: {{StudentID: marie.ID, Subject: "maths", Description: "Exercices", DueDate: soon}},
			paul.ID:  {{StudentID: paul.ID, Subject: "histoire", Description: "Réviser", DueDate: soon}},
		},
	}

	var mu sync.Mutex
	var delivered []string
	reg := delivery.NewRegistry()
	reg.Register("whatsapp:", func(sender types.SenderKey, reply types.Reply) error {
		mu.Lock()
		delivered = append(delivered, string(sender)+" | "+reply.Text)
		mu.Unlock()
		return nil
	})

	sched := New(dir, compose.New(nil, "fr"), reg, session.New(), "", 0)
	sched.remindHomework()

	mu.Lock()
	defer mu.Unlock()
	if len(delivered) != 1 {
		t.Fatalf("expected 1 delivery, got %d: %v", len(delivered), delivered)
	}
	if !strings.HasPrefix(delivered[0], "whatsapp:+33612345678") {
		t.Errorf("delivered to wrong sender: %s", delivered[0])
	}
	if !strings.Contains(delivered[0], "maths") {
		t.Errorf("digest missing due item: %s", delivered[0])
	}
}

func TestRemindHomeworkSkipsEmptyDigests(t *testing.T) {
	parent := types.Parent{ID: "p-1", Contact: "+336", Channel: "whatsapp", Reminders: true}
	marie := types.Student{ID: "st-1", ParentID: parent.ID, FirstName: "Marie"}

	dir := &fakeDirectory{
		parents:  []types.Parent{parent},
		children: map[types.ParentID][]types.Student{parent.ID: {marie}},
		// Nothing due within the horizon.
		homework: map[types.StudentID][]types.HomeworkItem{
			marie.ID: {{StudentID: marie.ID, Subject: "maths", Description: "Loin", DueDate: time.Now().Add(200 * time.Hour)}},
		},
	}

	called := false
	reg := delivery.NewRegistry()
	reg.Register("whatsapp:", func(types.SenderKey, types.Reply) error {
		called = true
		return nil
	})

	sched := New(dir, compose.New(nil, "fr"), reg, session.New(), "", 0)
	sched.remindHomework()

	if called {
		t.Error("empty digest must not be delivered")
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	sched := New(&fakeDirectory{}, compose.New(nil, "fr"), delivery.NewRegistry(), session.New(), "not a cron expr", time.Hour)
	if err := sched.Start(); err == nil {
		sched.Stop()
		t.Fatal("expected error for invalid schedule")
	}
}

func TestStartAndStopWithValidSchedule(t *testing.T) {
	sched := New(&fakeDirectory{}, compose.New(nil, "fr"), delivery.NewRegistry(), session.New(), "0 7 * * *", time.Hour)
	if err := sched.Start(); err != nil {
		t.Fatal(err)
	}
	sched.Stop()
}
