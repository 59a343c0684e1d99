package nlp

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode"

	"github.com/jbrukh/bayesian"

	"github.com/user/cartable/internal/types"
)

// confidenceFloor is the minimum posterior probability the statistical tier
// must reach for its label to be accepted instead of "unknown".
const confidenceFloor = 0.4

var bayesClasses = []bayesian.Class{
	bayesian.Class(types.IntentGreeting),
	bayesian.Class(types.IntentGrades),
	bayesian.Class(types.IntentAttendance),
	bayesian.Class(types.IntentHomework),
	bayesian.Class(types.IntentSchool),
	bayesian.Class(types.IntentHelp),
}

// trainingTemplates are the fixed labeled sentences the statistical tier is
// built from. A "*" is a wildcard slot filled with sample names and
// subjects at training time.
var trainingTemplates = map[types.Intent][]string{
	types.IntentGreeting: {
		"bonjour", "salut", "bonsoir", "hello", "coucou",
		"bonjour *", "salut *", "bonsoir *", "hello *",
		"* bonjour", "* bonsoir", "* salut",
	},
	types.IntentGrades: {
		"notes de *", "bulletin de *", "moyennes de *",
		"* a quelles notes", "résultats de *",
		"voir les notes de *", "consulter les notes de *",
		"* notes", "notes *", "bulletin *",
		"* notes en *", "notes * en *", "moyenne de * en *",
		"notes de * en maths", "résultats * en français",
	},
	types.IntentAttendance: {
		"absences de *", "* est absent", "* était absent",
		"présence de *", "* est présent", "assiduité de *",
		"retards de *", "* a des absences", "* était présente hier",
		"* était là *", "* présente *", "* était * hier",
	},
	types.IntentHomework: {
		"devoirs de *", "* a quoi comme devoirs",
		"exercices pour *", "leçons de *",
		"travail pour *", "devoirs *",
		"devoirs de * en *", "* a * devoir en *",
		"quels exercices pour * en *",
	},
	types.IntentSchool: {
		"école de *", "* va à quelle école",
		"établissement de *", "* est scolarisé où",
		"où étudie *", "* fréquente quelle école",
	},
	types.IntentHelp: {
		"aide", "help", "aidez-moi", "que peux-tu faire",
		"comment ça marche", "quelles sont tes fonctions",
	},
}

// wildcardFillers are the sample values substituted into template slots.
var wildcardFillers = []string{"marie", "paul", "lucas", "emma", "maths", "français"}

// Classifier performs two-tier intent classification: a deterministic
// keyword-containment tier over the pattern library, then a trained naive
// Bayes fallback bounded by a confidence floor.
type Classifier struct {
	model *bayesian.Classifier
}

// NewClassifier loads a persisted model from modelPath, falling back to a
// fresh training pass when no model exists or loading fails. An empty path
// always trains in memory.
func NewClassifier(modelPath string) (*Classifier, error) {
	if modelPath != "" {
		if _, err := os.Stat(modelPath); err == nil {
			model, err := bayesian.NewClassifierFromFile(modelPath)
			if err == nil {
				slog.Info("intent model loaded", "path", modelPath)
				return &Classifier{model: model}, nil
			}
			slog.Warn("intent model load failed, retraining", "path", modelPath, "error", err)
		}
	}

	c := &Classifier{model: train()}
	if modelPath != "" {
		if err := c.model.WriteToFile(modelPath); err != nil {
			return nil, fmt.Errorf("persist intent model: %w", err)
		}
		slog.Info("intent model trained and saved", "path", modelPath)
	}
	return c, nil
}

// train builds the naive Bayes model from the labeled templates, expanding
// each wildcard slot with the sample fillers.
func train() *bayesian.Classifier {
	model := bayesian.NewClassifier(bayesClasses...)
	for intent, templates := range trainingTemplates {
		class := bayesian.Class(intent)
		for _, tpl := range templates {
			for _, doc := range expandTemplate(tpl) {
				if tokens := tokenize(doc); len(tokens) > 0 {
					model.Learn(tokens, class)
				}
			}
		}
	}
	return model
}

func expandTemplate(tpl string) []string {
	if !strings.Contains(tpl, "*") {
		return []string{tpl}
	}
	docs := make([]string, 0, len(wildcardFillers))
	for _, filler := range wildcardFillers {
		docs = append(docs, strings.ReplaceAll(tpl, "*", filler))
	}
	return docs
}

// tokenize lower-cases the text and splits it into letter/digit runs.
func tokenize(text string) []string {
	lower := strings.ToLower(text)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Classify returns the intent of the text. It never fails: text no tier can
// place resolves to IntentUnknown.
//
// Tier 1 tests keyword containment in the pattern library's declared order,
// so greeting always wins over any co-occurring keyword of another intent.
// Tier 2 asks the statistical model and accepts its label only above the
// confidence floor.
func (c *Classifier) Classify(text string) types.Intent {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return types.IntentUnknown
	}

	for _, group := range intentTable {
		for _, kw := range group.Keywords {
			if strings.Contains(lower, kw) {
				return group.Intent
			}
		}
	}

	tokens := tokenize(lower)
	if len(tokens) == 0 {
		return types.IntentUnknown
	}
	scores, best, _ := c.model.ProbScores(tokens)
	if best < 0 || best >= len(scores) || scores[best] <= confidenceFloor {
		return types.IntentUnknown
	}
	return types.Intent(c.model.Classes[best])
}
