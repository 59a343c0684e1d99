package telegram

import (
	"strings"
	"testing"

	"github.com/user/cartable/internal/types"
)

func TestSplitMessageShort(t *testing.T) {
	parts := splitMessage("bonjour")
	if len(parts) != 1 || parts[0] != "bonjour" {
		t.Errorf("got %v", parts)
	}
}

func TestSplitMessageLong(t *testing.T) {
	long := strings.Repeat("a", maxTelegramMessage*2+10)
	parts := splitMessage(long)

	if len(parts) != 3 {
		t.Fatalf("got %d parts", len(parts))
	}
	total := 0
	for _, p := range parts {
		if len(p) > maxTelegramMessage {
			t.Errorf("part exceeds limit: %d", len(p))
		}
		total += len(p)
	}
	if total != len(long) {
		t.Errorf("split lost content: %d != %d", total, len(long))
	}
}

func TestSenderKeyForChat(t *testing.T) {
	if got := senderKey(12345); got != types.SenderKey("telegram:12345") {
		t.Errorf("got %q", got)
	}
	if got := senderKey(12345); got.Address() != "12345" {
		t.Errorf("address = %q", got.Address())
	}
}
