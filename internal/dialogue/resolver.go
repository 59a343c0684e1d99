// Package dialogue resolves which child a structured query targets,
// updating the sender's session along the way. The same state machine runs
// for grades, attendance, homework, and school requests.
package dialogue

import (
	"fmt"
	"strings"

	"github.com/user/cartable/internal/types"
)

const noChildrenText = "Aucun enfant n'est associé à votre compte."

const multipleChildrenTemplate = "Vous avez plusieurs enfants :\n%s\nVeuillez préciser lequel (par exemple: \"notes pour [prénom]\")"

// Resolution is the outcome of one resolution attempt. Child is set when a
// single child was pinned; otherwise Prompt carries the user-facing
// clarification (disambiguation, not-found, or no-children text).
type Resolution struct {
	Child  *types.Student
	Prompt string
}

// Resolved reports whether a child was pinned.
func (r Resolution) Resolved() bool { return r.Child != nil }

// Resolve picks the child the query targets, mutating the session:
//
//  1. no children at all is terminal;
//  2. several children, none pinned, no name in the query asks the user
//     to pick, without touching the selection;
//  3. an explicit name always wins and re-pins the session, or yields a
//     not-found prompt naming the requested child;
//  4. an existing pinned selection that still matches is reused;
//  5. an only child is auto-selected and pinned;
//  6. anything left falls back to the disambiguation prompt.
//
// When a request resolves, a pending voiceRequested latch is consumed:
// inVoice is set and voiceRequested cleared, so the "switch to voice"
// instruction covers exactly this answer.
func Resolve(sess *types.Session, q types.StructuredQuery, children []types.Student) Resolution {
	if len(children) == 0 {
		return Resolution{Prompt: noChildrenText}
	}

	if len(children) > 1 && sess.SelectedChild == "" && q.StudentName == "" {
		return Resolution{Prompt: disambiguationPrompt(children)}
	}

	var selected *types.Student
	switch {
	case q.StudentName != "":
		selected = findByName(children, q.StudentName)
		if selected == nil {
			return Resolution{Prompt: fmt.Sprintf(
				"Je ne trouve pas d'enfant nommé %s associé à votre compte.", q.StudentName)}
		}
		sess.SelectedChild = selected.ID

	case sess.SelectedChild != "":
		selected = findByID(children, sess.SelectedChild)

	case len(children) == 1:
		selected = &children[0]
		sess.SelectedChild = selected.ID
	}

	if selected == nil {
		// Stale selection or no way to decide: ask again.
		return Resolution{Prompt: disambiguationPrompt(children)}
	}

	if sess.VoiceRequested {
		sess.InVoice = true
		sess.VoiceRequested = false
	}
	return Resolution{Child: selected}
}

// findByName matches case-insensitively on first name or last name.
func findByName(children []types.Student, name string) *types.Student {
	for i := range children {
		if strings.EqualFold(children[i].FirstName, name) ||
			strings.EqualFold(children[i].LastName, name) {
			return &children[i]
		}
	}
	return nil
}

func findByID(children []types.Student, id types.StudentID) *types.Student {
	for i := range children {
		if children[i].ID == id {
			return &children[i]
		}
	}
	return nil
}

func disambiguationPrompt(children []types.Student) string {
	lines := make([]string, len(children))
	for i, c := range children {
		lines[i] = fmt.Sprintf("- %s %s", c.FirstName, c.LastName)
	}
	return fmt.Sprintf(multipleChildrenTemplate, strings.Join(lines, "\n"))
}
