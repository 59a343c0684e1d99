// internal/types/interfaces.go
package types

import (
	"context"
	"time"
)

// Directory is the school data source consumed by the core. Lookups that
// find nothing return (nil, nil) or an empty slice, not an error.
type Directory interface {
	Authenticate(ctx context.Context, contact string) (*Parent, error)
	Parents(ctx context.Context) ([]Parent, error)
	StudentsOf(ctx context.Context, parent ParentID) ([]Student, error)
	GradesOf(ctx context.Context, student StudentID) ([]Grade, error)
	AttendanceOf(ctx context.Context, student StudentID) ([]AttendanceRecord, error)
	AttendanceOn(ctx context.Context, student StudentID, day time.Time) ([]AttendanceRecord, error)
	HomeworkOf(ctx context.Context, student StudentID) ([]HomeworkItem, error)
	SchoolOf(ctx context.Context, student StudentID) (*School, error)
}

// Synthesizer turns text into spoken audio. Failures degrade the reply to
// text-only and are never fatal to the conversation.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// SessionStore holds per-sender conversation state. Get returns a zero
// session on first access; Clear resets the selection and voice flags
// without discarding the entry or the recorded last message. Callers are
// serialized per sender by the gateway, so a
// Get/modify/Put sequence for one sender never interleaves with another.
type SessionStore interface {
	Get(sender SenderKey) Session
	Put(sender SenderKey, sess Session)
	Clear(sender SenderKey)
}
