package nlp

import "testing"

func TestIsVoiceRequest(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"lis les notes de Marie", true},
		{"notes de Marie en vocal", true},
		{"notes de Paul en audio", true},
		{"absences de Marie à voix haute", true},
		{"dis moi les devoirs de Paul", true},
		{"notes de Marie", false},
		{"bonjour", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsVoiceRequest(tt.text); got != tt.want {
			t.Errorf("IsVoiceRequest(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestStripVoiceFraming(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"lis les notes de Marie", "les notes de Marie"},
		{"notes de Marie en vocal", "notes de Marie"},
		{"notes de Paul en audio", "notes de Paul"},
		{"absences de Marie à voix haute", "absences de Marie"},
		// No framing matched: the text is only trimmed.
		{"notes de Marie", "notes de Marie"},
	}
	for _, tt := range tests {
		if got := StripVoiceFraming(tt.text); got != tt.want {
			t.Errorf("StripVoiceFraming(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
