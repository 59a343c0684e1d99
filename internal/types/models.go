// internal/types/models.go
package types

import "time"

// Intent is the category of request a message expresses.
type Intent string

const (
	IntentGreeting   Intent = "greeting"
	IntentGrades     Intent = "grades"
	IntentAttendance Intent = "attendance"
	IntentHomework   Intent = "homework"
	IntentSchool     Intent = "school"
	IntentHelp       Intent = "help"
	IntentUnknown    Intent = "unknown"
)

// TimeReference is a resolved temporal mention: either a relative label
// ("hier", "demain", ...) with its signed day offset, or an explicit
// day/month[/year] date.
type TimeReference struct {
	Label  string
	Offset int
	Date   time.Time
}

// StructuredQuery is the per-message result of interpretation. Intent is
// never empty: unresolved classification yields IntentUnknown.
type StructuredQuery struct {
	Intent       Intent
	StudentName  string
	Subject      string
	TimeRef      *TimeReference
	VoiceRequest bool
}

// Session is per-sender conversational memory. SelectedChild is sticky
// across turns once resolved. VoiceRequested is a one-shot latch: the
// resolver converts it into InVoice and clears it the moment a request
// resolves to a child. InVoice drives voice output for the current answer;
// whether it survives the answer depends on the intent (grades keeps it,
// attendance and homework clear it after the spoken summary).
type Session struct {
	SelectedChild  StudentID
	InVoice        bool
	VoiceRequested bool
	LastMessage    string
}

// Parent is an authorized account holder, matched by the digits of the
// contact address their messages arrive from.
type Parent struct {
	ID        ParentID
	FirstName string
	LastName  string
	Contact   string
	Channel   string
	Reminders bool
}

type Student struct {
	ID        StudentID
	ParentID  ParentID
	SchoolID  SchoolID
	FirstName string
	LastName  string
	Class     string
}

type Grade struct {
	StudentID StudentID
	Subject   string
	Score     float64
}

type AttendanceRecord struct {
	StudentID StudentID
	Date      time.Time
	Status    string
}

type HomeworkItem struct {
	StudentID   StudentID
	Subject     string
	Description string
	DueDate     time.Time
}

type School struct {
	ID   SchoolID
	Name string
}

// InboundMessage is one piece of user input handed to the gateway.
type InboundMessage struct {
	Sender SenderKey
	Text   string
}

// Reply is the outcome of one handled message. Text is always set; Audio
// holds synthesized speech bytes when voice mode was active, nil otherwise.
type Reply struct {
	Text  string
	Audio []byte
}

// TextReply wraps plain text in a Reply.
func TextReply(text string) Reply {
	return Reply{Text: text}
}

// VoiceReply pairs the full text answer with its synthesized audio.
func VoiceReply(text string, audio []byte) Reply {
	return Reply{Text: text, Audio: audio}
}

// HasAudio reports whether the reply carries synthesized speech.
func (r Reply) HasAudio() bool {
	return len(r.Audio) > 0
}
