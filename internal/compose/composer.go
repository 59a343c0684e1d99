// Package compose turns resolved intents and domain data into user-facing
// French text, plus a compact spoken-style summary when voice mode is
// active.
package compose

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/user/cartable/internal/nlp"
	"github.com/user/cartable/internal/types"
)

// Composer formats answers and hands spoken summaries to the synthesizer.
// A nil synthesizer disables voice output entirely.
type Composer struct {
	synth types.Synthesizer
	lang  string
}

// New creates a Composer speaking the given language tag (e.g. "fr").
func New(synth types.Synthesizer, lang string) *Composer {
	return &Composer{synth: synth, lang: lang}
}

// Grades answers a grades request: per-subject averages out of 20, plus an
// overall average and a qualitative remark when no subject filter applies.
// With voice mode active a spoken summary is synthesized; the inVoice flag
// is deliberately left set after a grades answer.
func (c *Composer) Grades(ctx context.Context, sess *types.Session, child types.Student, grades []types.Grade, subjectKey string) types.Reply {
	if len(grades) == 0 {
		return types.TextReply(fmt.Sprintf("Aucune note disponible pour %s.", child.FirstName))
	}

	filtered := grades
	if subjectKey != "" {
		filtered = filterBySubject(grades, subjectKey)
		if len(filtered) == 0 {
			return types.TextReply(fmt.Sprintf(
				"Aucune note disponible en %s pour %s.", subjectKey, child.FirstName))
		}
	}

	subjects, averages, overall := averageBySubject(filtered)

	var b strings.Builder
	fmt.Fprintf(&b, "Notes de %s %s", child.FirstName, child.LastName)
	if subjectKey != "" {
		fmt.Fprintf(&b, " en %s", subjectKey)
	}
	b.WriteString(":\n\n")
	for _, subject := range subjects {
		fmt.Fprintf(&b, "%s: %.2f/20\n", subject, averages[subject])
	}
	if subjectKey == "" {
		fmt.Fprintf(&b, "\nMoyenne générale: %.2f/20", overall)
		b.WriteString("\n" + remark(overall))
	}
	text := b.String()

	if !sess.InVoice || c.synth == nil {
		return types.TextReply(text)
	}

	var spoken strings.Builder
	fmt.Fprintf(&spoken, "Voici les notes de %s. ", child.FirstName)
	if subjectKey != "" {
		fmt.Fprintf(&spoken, "En %s, la moyenne est de %.2f sur 20.", subjectKey, averages[subjects[0]])
	} else {
		for _, subject := range subjects {
			fmt.Fprintf(&spoken, "En %s, la moyenne est de %.2f sur 20. ", subject, averages[subject])
		}
		fmt.Fprintf(&spoken, "La moyenne générale est de %.2f sur 20.", overall)
	}

	audio, err := c.synth.Synthesize(ctx, spoken.String(), c.lang)
	if err != nil {
		slog.Error("grades audio synthesis failed", "error", err)
		return types.TextReply(text)
	}
	return types.VoiceReply(text, audio)
}

// Attendance answers an attendance request. With a time reference the
// records are expected to be pre-filtered to that day. The inVoice flag is
// cleared once the spoken summary has been attempted.
func (c *Composer) Attendance(ctx context.Context, sess *types.Session, child types.Student, records []types.AttendanceRecord, timeRef *types.TimeReference) types.Reply {
	if timeRef != nil {
		if len(records) == 0 {
			return types.TextReply(fmt.Sprintf(
				"Aucune information de présence pour %s %s.", child.FirstName, timeRef.Label))
		}
		return types.TextReply(fmt.Sprintf(
			"Présence de %s %s: %s", child.FirstName, timeRef.Label, records[0].Status))
	}

	if len(records) == 0 {
		return types.TextReply(fmt.Sprintf("Aucune information de présence pour %s.", child.FirstName))
	}

	sorted := make([]types.AttendanceRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	last := sorted[0]
	absences := 0
	for _, r := range sorted {
		if strings.EqualFold(r.Status, "absent") {
			absences++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Suivi de présence de %s %s:\n\n", child.FirstName, child.LastName)
	fmt.Fprintf(&b, "Dernière mise à jour: %s\n", last.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Statut actuel: %s\n", last.Status)
	fmt.Fprintf(&b, "Total des absences: %d jour(s)", absences)
	text := b.String()

	wantVoice := sess.InVoice
	sess.InVoice = false
	if !wantVoice || c.synth == nil {
		return types.TextReply(text)
	}

	spoken := fmt.Sprintf("%s est actuellement %s et totalise %d jours d'absence.",
		child.FirstName, last.Status, absences)
	audio, err := c.synth.Synthesize(ctx, spoken, c.lang)
	if err != nil {
		slog.Error("attendance audio synthesis failed", "error", err)
		return types.TextReply(text)
	}
	return types.VoiceReply(text, audio)
}

// Homework answers a homework request: upcoming items sorted by due date.
// The inVoice flag is cleared once the spoken summary has been attempted.
func (c *Composer) Homework(ctx context.Context, sess *types.Session, child types.Student, items []types.HomeworkItem, now time.Time) types.Reply {
	if len(items) == 0 {
		return types.TextReply(fmt.Sprintf("Aucun devoir pour %s.", child.FirstName))
	}

	upcoming := upcomingSorted(items, now)

	var text string
	if len(upcoming) == 0 {
		text = fmt.Sprintf("Aucun devoir à venir pour %s.", child.FirstName)
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, "Devoirs à venir pour %s %s:\n\n", child.FirstName, child.LastName)
		for i, hw := range upcoming {
			fmt.Fprintf(&b, "%d. %s: %s\n", i+1, hw.Subject, hw.Description)
			fmt.Fprintf(&b, "   À rendre pour le: %s\n\n", hw.DueDate.Format("2006-01-02"))
		}
		text = strings.TrimRight(b.String(), "\n")
	}

	wantVoice := sess.InVoice
	sess.InVoice = false
	if !wantVoice || c.synth == nil {
		return types.TextReply(text)
	}

	var spoken string
	if len(upcoming) == 0 {
		spoken = fmt.Sprintf("%s n'a pas de devoirs à venir.", child.FirstName)
	} else {
		next := upcoming[0]
		spoken = fmt.Sprintf("Le prochain devoir de %s est en %s, à rendre pour le %s.",
			child.FirstName, next.Subject, next.DueDate.Format("2006-01-02"))
	}
	audio, err := c.synth.Synthesize(ctx, spoken, c.lang)
	if err != nil {
		slog.Error("homework audio synthesis failed", "error", err)
		return types.TextReply(text)
	}
	return types.VoiceReply(text, audio)
}

// School answers a school request.
func (c *Composer) School(child types.Student, school *types.School) string {
	if school == nil {
		return fmt.Sprintf("Information non disponible pour %s.", child.FirstName)
	}
	return fmt.Sprintf("%s est inscrit(e) à %s en classe de %s",
		child.FirstName, school.Name, child.Class)
}

// Digest builds a short homework reminder for one child, listing items due
// within the horizon. Returns "" when nothing is due.
func (c *Composer) Digest(child types.Student, items []types.HomeworkItem, now time.Time, horizon time.Duration) string {
	due := make([]types.HomeworkItem, 0, len(items))
	for _, hw := range upcomingSorted(items, now) {
		if hw.DueDate.Sub(now) <= horizon {
			due = append(due, hw)
		}
	}
	if len(due) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rappel: devoirs de %s à rendre bientôt:\n", child.FirstName)
	for _, hw := range due {
		fmt.Fprintf(&b, "- %s: %s (pour le %s)\n", hw.Subject, hw.Description, hw.DueDate.Format("2006-01-02"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// remark maps an overall average to the qualitative closing line.
func remark(avg float64) string {
	switch {
	case avg >= 16:
		return "Excellents résultats !"
	case avg >= 14:
		return "Très bons résultats."
	case avg >= 12:
		return "Bons résultats."
	case avg >= 10:
		return "Résultats satisfaisants."
	default:
		return "Des efforts sont nécessaires pour améliorer ces résultats."
	}
}

// filterBySubject keeps grades whose free-text subject label matches any
// synonym of the requested subject key.
func filterBySubject(grades []types.Grade, subjectKey string) []types.Grade {
	synonyms := nlp.SubjectSynonyms(subjectKey)
	out := make([]types.Grade, 0, len(grades))
	for _, g := range grades {
		label := strings.ToLower(g.Subject)
		for _, syn := range synonyms {
			if strings.Contains(label, syn) {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

// averageBySubject groups grades per subject label in first-seen order and
// returns the per-subject and overall averages.
func averageBySubject(grades []types.Grade) (subjects []string, averages map[string]float64, overall float64) {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	var total float64

	for _, g := range grades {
		if _, seen := sums[g.Subject]; !seen {
			subjects = append(subjects, g.Subject)
		}
		sums[g.Subject] += g.Score
		counts[g.Subject]++
		total += g.Score
	}

	averages = make(map[string]float64, len(subjects))
	for _, s := range subjects {
		averages[s] = sums[s] / float64(counts[s])
	}
	overall = total / float64(len(grades))
	return subjects, averages, overall
}

func upcomingSorted(items []types.HomeworkItem, now time.Time) []types.HomeworkItem {
	upcoming := make([]types.HomeworkItem, 0, len(items))
	for _, hw := range items {
		if !hw.DueDate.Before(now) {
			upcoming = append(upcoming, hw)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool { return upcoming[i].DueDate.Before(upcoming[j].DueDate) })
	return upcoming
}
