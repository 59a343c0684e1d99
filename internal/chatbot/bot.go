// Package chatbot is the conversation engine: it authenticates the sender,
// interprets the message, resolves the targeted child, fetches the domain
// data, and composes the reply. Every failure path degrades to a textual
// answer; nothing here is fatal to the process.
package chatbot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/user/cartable/internal/compose"
	"github.com/user/cartable/internal/dialogue"
	"github.com/user/cartable/internal/nlp"
	"github.com/user/cartable/internal/types"
)

const (
	greetingText = "Bonjour ! Je suis l'assistant de l'école. Je peux vous donner les notes, " +
		"les absences, les devoirs ou des informations sur l'école. Comment puis-je vous aider ?"
	helpText = "Voici ce que je peux faire :\n" +
		"- Consulter les notes (par matière)\n" +
		"- Vérifier les absences\n" +
		"- Voir les devoirs\n" +
		"- Informations sur l'école\n" +
		"Vous pouvez aussi demander une réponse vocale en ajoutant 'en vocal' à votre message."
	unauthorizedText = "Désolé, je ne reconnais pas votre numéro. Contactez l'établissement " +
		"pour vous assurer que votre numéro est bien enregistré."
	askVoiceText  = "Je vais répondre par message vocal."
	noMessageText = "Je n'ai pas détecté de message. Comment puis-je vous aider ?"
	apologyText   = "Je suis désolé, j'ai rencontré une erreur. Veuillez réessayer."
)

// Bot wires the interpreter, session store, directory, and composer into
// the exposed conversation entry points.
type Bot struct {
	interp   *nlp.Interpreter
	sessions types.SessionStore
	dir      types.Directory
	composer *compose.Composer
	now      func() time.Time
}

// New creates a Bot.
func New(interp *nlp.Interpreter, sessions types.SessionStore, dir types.Directory, composer *compose.Composer) *Bot {
	return &Bot{
		interp:   interp,
		sessions: sessions,
		dir:      dir,
		composer: composer,
		now:      time.Now,
	}
}

// HandleMessage processes one inbound message and returns the reply. The
// gateway serializes calls per sender, so the session read-modify-write
// below never interleaves for a single sender.
func (b *Bot) HandleMessage(ctx context.Context, sender types.SenderKey, text string) types.Reply {
	if strings.TrimSpace(text) == "" {
		return types.TextReply(noMessageText)
	}

	q := b.interp.Interpret(text)

	switch q.Intent {
	case types.IntentGreeting:
		return types.TextReply(greetingText)
	case types.IntentHelp:
		return types.TextReply(helpText)
	case types.IntentUnknown:
		return types.TextReply("Je n'ai pas compris votre demande. " + helpText)
	}

	parent, err := b.dir.Authenticate(ctx, sender.Address())
	if err != nil {
		slog.Error("authentication lookup failed", "sender", string(sender), "error", err)
		return types.TextReply(apologyText)
	}
	if parent == nil {
		slog.Warn("unauthorized sender", "sender", string(sender))
		return types.TextReply(unauthorizedText)
	}

	children, err := b.dir.StudentsOf(ctx, parent.ID)
	if err != nil {
		slog.Error("children lookup failed", "parent", string(parent.ID), "error", err)
		return types.TextReply(apologyText)
	}

	sess := b.sessions.Get(sender)

	// A voice wrapper on this very message means "answer this turn by
	// voice"; /voice sets the one-shot VoiceRequested latch instead.
	if q.VoiceRequest {
		sess.InVoice = true
	}

	res := dialogue.Resolve(&sess, q, children)
	if !res.Resolved() {
		b.sessions.Put(sender, sess)
		return types.TextReply(res.Prompt)
	}
	child := *res.Child

	// A follow-up grades question may leave the subject implicit; re-derive
	// it from the previous message.
	subject := q.Subject
	if subject == "" && q.Intent == types.IntentGrades && sess.LastMessage != "" {
		subject = nlp.ExtractSubject(sess.LastMessage)
	}

	reply := b.answer(ctx, &sess, child, q, subject)

	sess.LastMessage = text
	b.sessions.Put(sender, sess)
	return reply
}

func (b *Bot) answer(ctx context.Context, sess *types.Session, child types.Student, q types.StructuredQuery, subject string) types.Reply {
	switch q.Intent {
	case types.IntentGrades:
		grades, err := b.dir.GradesOf(ctx, child.ID)
		if err != nil {
			slog.Error("grades lookup failed", "student", string(child.ID), "error", err)
			return types.TextReply(apologyText)
		}
		return b.composer.Grades(ctx, sess, child, grades, subject)

	case types.IntentAttendance:
		var records []types.AttendanceRecord
		var err error
		if q.TimeRef != nil {
			records, err = b.dir.AttendanceOn(ctx, child.ID, q.TimeRef.Date)
		} else {
			records, err = b.dir.AttendanceOf(ctx, child.ID)
		}
		if err != nil {
			slog.Error("attendance lookup failed", "student", string(child.ID), "error", err)
			return types.TextReply(apologyText)
		}
		return b.composer.Attendance(ctx, sess, child, records, q.TimeRef)

	case types.IntentHomework:
		items, err := b.dir.HomeworkOf(ctx, child.ID)
		if err != nil {
			slog.Error("homework lookup failed", "student", string(child.ID), "error", err)
			return types.TextReply(apologyText)
		}
		if subject != "" {
			items = filterHomework(items, subject)
		}
		return b.composer.Homework(ctx, sess, child, items, b.now())

	case types.IntentSchool:
		school, err := b.dir.SchoolOf(ctx, child.ID)
		if err != nil {
			slog.Error("school lookup failed", "student", string(child.ID), "error", err)
			return types.TextReply(apologyText)
		}
		return types.TextReply(b.composer.School(child, school))

	default:
		return types.TextReply("Je n'ai pas compris votre demande. " + helpText)
	}
}

// RequestVoice arms the one-shot voice latch for the sender's next resolved
// answer and returns the acknowledgement text.
func (b *Bot) RequestVoice(sender types.SenderKey) string {
	sess := b.sessions.Get(sender)
	sess.VoiceRequested = true
	b.sessions.Put(sender, sess)
	return askVoiceText
}

// ClearSession resets the sender's selection and voice flags.
func (b *Bot) ClearSession(sender types.SenderKey) {
	b.sessions.Clear(sender)
}

// filterHomework keeps items whose subject label matches any synonym of the
// requested subject key.
func filterHomework(items []types.HomeworkItem, subjectKey string) []types.HomeworkItem {
	synonyms := nlp.SubjectSynonyms(subjectKey)
	out := make([]types.HomeworkItem, 0, len(items))
	for _, hw := range items {
		label := strings.ToLower(hw.Subject)
		for _, syn := range synonyms {
			if strings.Contains(label, syn) {
				out = append(out, hw)
				break
			}
		}
	}
	return out
}
