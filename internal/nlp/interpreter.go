package nlp

import (
	"log/slog"
	"time"

	"github.com/user/cartable/internal/types"
)

// Interpreter orchestrates the classifier and the entity extractors into
// one StructuredQuery per inbound message.
type Interpreter struct {
	classifier *Classifier
	now        func() time.Time
}

// NewInterpreter creates an Interpreter around the given classifier.
func NewInterpreter(classifier *Classifier) *Interpreter {
	return &Interpreter{classifier: classifier, now: time.Now}
}

// Interpret produces a fully-populated StructuredQuery for the message.
// Voice detection runs on the raw text; framing is stripped before
// classification; greeting messages skip entity extraction entirely.
// Interpret never fails: extractor misses degrade to empty fields.
func (i *Interpreter) Interpret(text string) types.StructuredQuery {
	q := types.StructuredQuery{Intent: types.IntentUnknown}

	q.VoiceRequest = IsVoiceRequest(text)
	clean := StripVoiceFraming(text)

	q.Intent = i.classifier.Classify(clean)
	if q.Intent != types.IntentGreeting {
		q.StudentName = ExtractStudentName(clean)
		q.Subject = ExtractSubject(clean)
		q.TimeRef = ExtractTimeReference(clean, i.now())
	}

	slog.Debug("message interpreted",
		"intent", string(q.Intent),
		"student", q.StudentName,
		"subject", q.Subject,
		"voice", q.VoiceRequest,
	)
	return q
}
