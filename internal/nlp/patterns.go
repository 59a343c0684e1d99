// Package nlp turns free-form French parent messages into structured
// queries: intent classification, student-name / subject / time-reference
// extraction, and voice-command detection.
package nlp

import (
	"regexp"

	"github.com/user/cartable/internal/types"
)

// intentGroup pairs an intent with its lower-cased trigger substrings.
// The table order is the tie-break priority: greeting is always checked
// first and wins over any co-occurring keyword of another intent.
type intentGroup struct {
	Intent   types.Intent
	Keywords []string
}

var intentTable = []intentGroup{
	{types.IntentGreeting, []string{
		"bonjour", "bonsoir", "salut", "hello", "coucou",
		"hey", "bonne journée", "bonne soirée",
	}},
	{types.IntentGrades, []string{
		"notes", "note", "moyenne", "bulletin", "résultat",
		"résultats", "bulletins", "évaluation",
		"contrôle", "examen", "test",
	}},
	{types.IntentAttendance, []string{
		"absence", "absences", "présence", "présent", "absent",
		"retard", "retards", "assiduité", "présente", "était",
		"venue", "venu", "là", "présents", "assisté",
	}},
	{types.IntentHomework, []string{
		"devoir", "devoirs", "exercice", "exercices", "travail",
		"leçon", "leçons", "à faire", "révisions", "contrôles",
	}},
	{types.IntentSchool, []string{
		"école", "ecole", "lycée", "college", "collège",
		"établissement", "institut", "institution", "scolarité",
		"classe", "niveau", "section",
	}},
	{types.IntentHelp, []string{
		"aide", "help", "aidez-moi",
	}},
}

// subjectGroup maps a subject key to its synonyms and abbreviations.
type subjectGroup struct {
	Key      string
	Synonyms []string
}

var subjectTable = []subjectGroup{
	{"mathematique", []string{"math", "maths", "mathematique", "mathématique", "mathématiques", "calcul"}},
	{"francais", []string{"francais", "français", "fr", "french", "littérature", "dictée"}},
	{"anglais", []string{"anglais", "eng", "english", "langue anglaise"}},
	{"histoire", []string{"histoire", "history", "hist"}},
	{"geographie", []string{"geographie", "géographie", "geo", "géo"}},
	{"physique", []string{"physique", "physics", "phys"}},
	{"chimie", []string{"chimie", "chemistry", "chim"}},
	{"svt", []string{"svt", "science", "biologie", "sciences naturelles", "bio"}},
}

// SubjectSynonyms returns the synonym set for a subject key, or nil for an
// unknown key. Callers use it to match free-text subject labels in domain
// data against an extracted subject.
func SubjectSynonyms(key string) []string {
	for _, g := range subjectTable {
		if g.Key == key {
			return g.Synonyms
		}
	}
	return nil
}

// timeLabel maps a relative French time mention to a signed day offset.
// More specific labels come first: "avant-hier" must win over its own
// substring "hier".
type timeLabel struct {
	Label  string
	Offset int
}

var timeTable = []timeLabel{
	{"avant-hier", -2},
	{"après-demain", 2},
	{"apres-demain", 2},
	{"aujourd'hui", 0},
	{"demain", 1},
	{"hier", -1},
}

// explicitDatePattern matches day/month with an optional 2- or 4-digit year.
var explicitDatePattern = regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})(?:[/\-](\d{2,4}))?`)

// stopWords are words that must never be accepted as a student name:
// determiners, command verbs, greetings, and intent nouns.
var stopWords = map[string]bool{
	"les": true, "des": true, "de": true, "la": true, "le": true, "du": true,
	"voir": true, "consulter": true, "obtenir": true, "donner": true,
	"mon": true, "ma": true, "mes": true, "pour": true, "sur": true,

	"bonjour": true, "bonsoir": true, "salut": true, "hello": true,
	"coucou": true, "hey": true, "bonne": true, "journée": true, "soirée": true,

	"note": true, "notes": true, "bulletin": true, "moyenne": true,
	"résultat": true, "résultats": true, "devoir": true, "devoirs": true,
	"absence": true, "absences": true, "présence": true, "école": true,
	"matière": true, "matières": true,
}

// leadingDeterminer strips a generic article or preposition at the start of
// a message before the name cascade runs.
var leadingDeterminer = regexp.MustCompile(`(?i)^(les?|des?|la|pour|de)\s+`)

// namePatterns is the ordered extraction cascade for student names. Each
// pattern captures one candidate; the first whose candidate is not a stop
// word wins.
var namePatterns = []*regexp.Regexp{
	// capitalized word right after a preposition: "notes de Marie"
	regexp.MustCompile(`(?i)(?:de|d'|pour|à)\s+([A-ZÀ-Ý][a-zà-ÿ'-]+)`),
	// capitalized word right before a preposition: "Marie en maths"
	regexp.MustCompile(`(?i)([A-ZÀ-Ý][a-zà-ÿ'-]+)\s+(?:en|a|pour)\s+`),
	// intent noun + preposition + name: "devoirs de Paul"
	regexp.MustCompile(`(?i)(?:notes?|devoirs?|absences?)\s+(?:de|d')\s+([A-ZÀ-Ý][a-zà-ÿ'-]+)`),
	// any standalone capitalized word
	regexp.MustCompile(`\b([A-ZÀ-Ý][a-zà-ÿ'-]+)\b`),
}

// voiceTriggers are bare words whose presence anywhere in the message marks
// it as a voice request.
var voiceTriggers = []string{
	"lis", "lire", "lit", "lecture", "vocal",
	"audio", "voix", "parle", "dire", "dis",
	"écouter", "écoute", "entendre",
}

// framing is one voice-command wrapper pattern. Matching framings are
// stripped from the message before interpretation; bare trigger words that
// are not part of a framing stay in place.
type framing struct {
	re *regexp.Regexp
}

func (f framing) Matches(s string) bool { return f.re.MatchString(s) }
func (f framing) Strip(s string) string { return f.re.ReplaceAllString(s, "") }

var voiceStartFramings = []framing{
	{regexp.MustCompile(`(?i)^(lis|lire|dis|dire|parle)\s+`)},
	{regexp.MustCompile(`(?i)^en\s+(vocal|audio|voix)`)},
	{regexp.MustCompile(`(?i)^écouter\s+`)},
}

var voiceEndFramings = []framing{
	{regexp.MustCompile(`(?i)\s+en\s+(vocal|audio|voix)$`)},
	{regexp.MustCompile(`(?i)\s+à\s+voix\s+haute$`)},
}
