package delivery

import (
	"testing"

	"github.com/user/cartable/internal/types"
)

func TestDeliverRoutesByPrefix(t *testing.T) {
	reg := NewRegistry()

	var gotSender types.SenderKey
	var gotReply types.Reply
	reg.Register("telegram:", func(sender types.SenderKey, reply types.Reply) error {
		gotSender = sender
		gotReply = reply
		return nil
	})

	sender := types.SenderKey("telegram:12345")
	if err := reg.Deliver(sender, types.TextReply("rappel")); err != nil {
		t.Fatal(err)
	}
	if gotSender != sender {
		t.Errorf("sender = %q", gotSender)
	}
	if gotReply.Text != "rappel" {
		t.Errorf("reply = %+v", gotReply)
	}
}

func TestDeliverUnknownPrefix(t *testing.T) {
	reg := NewRegistry()
	reg.Register("telegram:", func(types.SenderKey, types.Reply) error { return nil })

	if err := reg.Deliver(types.SenderKey("whatsapp:+336"), types.TextReply("x")); err == nil {
		t.Error("expected error for unregistered channel")
	}
}
