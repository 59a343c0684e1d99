package nlp

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/user/cartable/internal/types"
)

// ExtractStudentName runs the ordered pattern cascade over the message and
// returns the first captured candidate that is not a stop word, normalized
// to title case. Returns "" when no candidate survives.
func ExtractStudentName(message string) string {
	cleaned := strings.TrimSpace(message)
	cleaned = leadingDeterminer.ReplaceAllString(cleaned, "")

	for _, p := range namePatterns {
		m := p.FindStringSubmatch(cleaned)
		if m == nil || m[1] == "" {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if stopWords[strings.ToLower(candidate)] {
			continue
		}
		return titleCase(candidate)
	}
	return ""
}

// titleCase upper-cases the first rune and lower-cases the rest.
func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// ExtractSubject returns the first subject key whose synonym set has a
// containment match, in the subject table's declared order, or "".
func ExtractSubject(message string) string {
	lower := strings.ToLower(strings.TrimSpace(message))

	for _, g := range subjectTable {
		for _, syn := range g.Synonyms {
			if strings.Contains(lower, syn) {
				return g.Key
			}
		}
	}
	return ""
}

// ExtractTimeReference resolves a relative label ("demain" -> now+1d) or an
// explicit day/month[/year] date. Two-digit years are normalized by adding
// 2000; a missing year defaults to the current one. Returns nil when the
// message carries no time mention.
func ExtractTimeReference(message string, now time.Time) *types.TimeReference {
	lower := strings.ToLower(strings.TrimSpace(message))

	for _, t := range timeTable {
		if strings.Contains(lower, t.Label) {
			return &types.TimeReference{
				Label:  t.Label,
				Offset: t.Offset,
				Date:   now.AddDate(0, 0, t.Offset),
			}
		}
	}

	m := explicitDatePattern.FindStringSubmatch(lower)
	if m == nil {
		return nil
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year := now.Year()
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
	}

	return &types.TimeReference{
		Label: "date_specifique",
		Date:  time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location()),
	}
}
