// internal/types/ids_test.go
package types

import "testing"

func TestNewRunIDUnique(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if a == b {
		t.Error("expected unique run IDs")
	}
	if a == "" {
		t.Error("expected non-empty run ID")
	}
}

func TestSenderKeyParts(t *testing.T) {
	key := NewSenderKey("whatsapp", "+33612345678")
	if key != SenderKey("whatsapp:+33612345678") {
		t.Errorf("key = %q", key)
	}
	if key.Channel() != "whatsapp" {
		t.Errorf("channel = %q", key.Channel())
	}
	if key.Address() != "+33612345678" {
		t.Errorf("address = %q", key.Address())
	}
}

func TestSenderKeyNoSeparator(t *testing.T) {
	key := SenderKey("bare")
	if key.Channel() != "bare" || key.Address() != "bare" {
		t.Errorf("channel = %q, address = %q", key.Channel(), key.Address())
	}
}

func TestReplyHasAudio(t *testing.T) {
	if TextReply("bonjour").HasAudio() {
		t.Error("text reply should carry no audio")
	}
	if !VoiceReply("bonjour", []byte("audio")).HasAudio() {
		t.Error("voice reply should carry audio")
	}
}
