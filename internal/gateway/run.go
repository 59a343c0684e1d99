package gateway

import (
	"context"
	"time"

	"github.com/user/cartable/internal/types"
)

// RunStatus represents the lifecycle state of a Run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run tracks a single execution of an inbound message for one sender.
type Run struct {
	ID         types.RunID
	Sender     types.SenderKey
	Message    *types.InboundMessage
	Status     RunStatus
	CreatedAt  time.Time
	Ctx        context.Context
	OnComplete func(reply types.Reply)
}

// NewRun creates a Run in the Queued state for the given message.
func NewRun(msg *types.InboundMessage) *Run {
	return &Run{
		ID:        types.NewRunID(),
		Sender:    msg.Sender,
		Message:   msg,
		Status:    RunStatusQueued,
		CreatedAt: time.Now(),
	}
}
