package dialogue

import (
	"strings"
	"testing"

	"github.com/user/cartable/internal/types"
)

var (
	marie = types.Student{ID: "st-1", FirstName: "Marie", LastName: "Dupont"}
	paul  = types.Student{ID: "st-2", FirstName: "Paul", LastName: "Dupont"}
)

func TestResolveNoChildren(t *testing.T) {
	sess := types.Session{}
	res := Resolve(&sess, types.StructuredQuery{Intent: types.IntentGrades}, nil)
	if res.Resolved() {
		t.Fatal("should not resolve")
	}
	if res.Prompt != "Aucun enfant n'est associé à votre compte." {
		t.Errorf("prompt = %q", res.Prompt)
	}
}

func TestResolveOnlyChildAutoSelected(t *testing.T) {
	sess := types.Session{}
	res := Resolve(&sess, types.StructuredQuery{Intent: types.IntentGrades}, []types.Student{marie})
	if !res.Resolved() {
		t.Fatalf("should resolve, got prompt %q", res.Prompt)
	}
	if res.Child.ID != marie.ID {
		t.Errorf("child = %s, want %s", res.Child.ID, marie.ID)
	}
	if sess.SelectedChild != marie.ID {
		t.Errorf("selection not pinned: %q", sess.SelectedChild)
	}
}

func TestResolveMultipleChildrenAsksToPick(t *testing.T) {
	sess := types.Session{}
	res := Resolve(&sess, types.StructuredQuery{Intent: types.IntentGrades}, []types.Student{marie, paul})
	if res.Resolved() {
		t.Fatal("should not resolve")
	}
	if !strings.Contains(res.Prompt, "Marie Dupont") || !strings.Contains(res.Prompt, "Paul Dupont") {
		t.Errorf("prompt should list both children: %q", res.Prompt)
	}
	if sess.SelectedChild != "" {
		t.Errorf("disambiguation must not pin a selection, got %q", sess.SelectedChild)
	}
}

func TestResolveExplicitNameWinsAndRepins(t *testing.T) {
	sess := types.Session{SelectedChild: marie.ID}
	q := types.StructuredQuery{Intent: types.IntentGrades, StudentName: "Paul"}
	res := Resolve(&sess, q, []types.Student{marie, paul})
	if !res.Resolved() || res.Child.ID != paul.ID {
		t.Fatalf("want Paul, got %+v", res)
	}
	if sess.SelectedChild != paul.ID {
		t.Errorf("selection should be re-pinned to Paul, got %q", sess.SelectedChild)
	}
}

func TestResolveNameMatchIsCaseInsensitive(t *testing.T) {
	sess := types.Session{}
	q := types.StructuredQuery{StudentName: "marie"}
	res := Resolve(&sess, q, []types.Student{marie, paul})
	if !res.Resolved() || res.Child.ID != marie.ID {
		t.Fatalf("want Marie, got %+v", res)
	}
}

func TestResolveNameMatchesLastName(t *testing.T) {
	sess := types.Session{}
	q := types.StructuredQuery{StudentName: "Dupont"}
	res := Resolve(&sess, q, []types.Student{marie})
	if !res.Resolved() || res.Child.ID != marie.ID {
		t.Fatalf("want Marie, got %+v", res)
	}
}

func TestResolveUnknownName(t *testing.T) {
	sess := types.Session{SelectedChild: marie.ID}
	q := types.StructuredQuery{StudentName: "Jean"}
	res := Resolve(&sess, q, []types.Student{marie, paul})
	if res.Resolved() {
		t.Fatal("should not resolve")
	}
	if !strings.Contains(res.Prompt, "Jean") {
		t.Errorf("prompt should name the requested child: %q", res.Prompt)
	}
	if sess.SelectedChild != marie.ID {
		t.Errorf("unknown name must not change the selection, got %q", sess.SelectedChild)
	}
}

func TestResolveReusesPinnedSelection(t *testing.T) {
	sess := types.Session{SelectedChild: paul.ID}
	res := Resolve(&sess, types.StructuredQuery{Intent: types.IntentHomework}, []types.Student{marie, paul})
	if !res.Resolved() || res.Child.ID != paul.ID {
		t.Fatalf("want Paul, got %+v", res)
	}
}

func TestResolveStaleSelectionAsksAgain(t *testing.T) {
	sess := types.Session{SelectedChild: "st-gone"}
	res := Resolve(&sess, types.StructuredQuery{}, []types.Student{marie, paul})
	if res.Resolved() {
		t.Fatal("stale selection should not resolve")
	}
	if !strings.Contains(res.Prompt, "Marie Dupont") {
		t.Errorf("prompt = %q", res.Prompt)
	}
}

func TestResolveConsumesVoiceLatch(t *testing.T) {
	sess := types.Session{VoiceRequested: true}
	res := Resolve(&sess, types.StructuredQuery{}, []types.Student{marie})
	if !res.Resolved() {
		t.Fatal("should resolve")
	}
	if !sess.InVoice {
		t.Error("latch should convert to InVoice")
	}
	if sess.VoiceRequested {
		t.Error("latch should be cleared once consumed")
	}
}

func TestResolveKeepsVoiceLatchWhenUnresolved(t *testing.T) {
	sess := types.Session{VoiceRequested: true}
	res := Resolve(&sess, types.StructuredQuery{}, []types.Student{marie, paul})
	if res.Resolved() {
		t.Fatal("should not resolve")
	}
	if sess.InVoice || !sess.VoiceRequested {
		t.Errorf("latch must survive an unresolved turn, got %+v", sess)
	}
}

func TestResolveIdempotent(t *testing.T) {
	sess := types.Session{}
	q := types.StructuredQuery{StudentName: "Marie"}
	children := []types.Student{marie, paul}

	first := Resolve(&sess, q, children)
	second := Resolve(&sess, q, children)
	if !first.Resolved() || !second.Resolved() {
		t.Fatal("both calls should resolve")
	}
	if first.Child.ID != second.Child.ID {
		t.Errorf("resolution diverged: %s vs %s", first.Child.ID, second.Child.ID)
	}
}
