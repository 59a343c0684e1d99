package nlp

import "strings"

// IsVoiceRequest reports whether the message asks for a spoken answer:
// a start framing ("lis-moi ..."), an end framing ("... en vocal"), or any
// bare trigger word anywhere in the text.
func IsVoiceRequest(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))

	for _, f := range voiceStartFramings {
		if f.Matches(lower) {
			return true
		}
	}
	for _, f := range voiceEndFramings {
		if f.Matches(lower) {
			return true
		}
	}

	for _, w := range voiceTriggers {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// StripVoiceFraming removes matched start and end voice framings, applied
// in declaration order, and trims the remainder. Only framing wrappers are
// removed; bare trigger words elsewhere in the sentence are left alone.
func StripVoiceFraming(text string) string {
	cleaned := text
	for _, f := range voiceStartFramings {
		cleaned = f.Strip(cleaned)
	}
	for _, f := range voiceEndFramings {
		cleaned = f.Strip(cleaned)
	}
	return strings.TrimSpace(cleaned)
}
