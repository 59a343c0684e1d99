package gateway

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/cartable/internal/types"
)

func TestQueueConcurrency(t *testing.T) {
	queue := NewQueue(2)
	ctx := context.Background()
	queue.Start(ctx)
	defer queue.Stop()

	var running int32
	var maxSeen int32

	queue.processor = func(run *Run) error {
		current := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&maxSeen)
			if current <= old || atomic.CompareAndSwapInt32(&maxSeen, old, current) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	}

	for i := 0; i < 5; i++ {
		msg := &types.InboundMessage{
			Sender: types.SenderKey(fmt.Sprintf("telegram:%d", i)),
			Text:   "notes de Marie",
		}
		if err := queue.Enqueue(NewRun(msg)); err != nil {
			t.Fatal(err)
		}
	}

	time.Sleep(500 * time.Millisecond)

	if m := atomic.LoadInt32(&maxSeen); m > 2 {
		t.Errorf("expected max 2 concurrent, saw %d", m)
	}
}

func TestQueueProcessorCalled(t *testing.T) {
	queue := NewQueue(1)
	ctx := context.Background()
	queue.Start(ctx)
	defer queue.Stop()

	var processed int32

	queue.SetProcessor(func(run *Run) error {
		atomic.AddInt32(&processed, 1)
		return nil
	})

	msg := &types.InboundMessage{Sender: types.SenderKey("telegram:1"), Text: "bonjour"}
	if err := queue.Enqueue(NewRun(msg)); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)

	if atomic.LoadInt32(&processed) != 1 {
		t.Errorf("expected 1 processed run, got %d", processed)
	}
}

func TestQueueSameSenderOrdering(t *testing.T) {
	queue := NewQueue(4)
	ctx := context.Background()
	queue.Start(ctx)
	defer queue.Stop()

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})

	queue.SetProcessor(func(run *Run) error {
		mu.Lock()
		order = append(order, run.Message.Text)
		n := len(order)
		mu.Unlock()
		if n == 3 {
			close(done)
		}
		return nil
	})

	sender := types.SenderKey("telegram:same")
	for i := 0; i < 3; i++ {
		msg := &types.InboundMessage{Sender: sender, Text: fmt.Sprintf("message-%d", i)}
		if err := queue.Enqueue(NewRun(msg)); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for runs to process")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if want := fmt.Sprintf("message-%d", i); v != want {
			t.Errorf("order[%d] = %s, want %s", i, v, want)
		}
	}
}

func TestQueueProcessorErrorSendsApology(t *testing.T) {
	queue := NewQueue(1)
	ctx := context.Background()
	queue.Start(ctx)
	defer queue.Stop()

	queue.SetProcessor(func(run *Run) error {
		return fmt.Errorf("boom")
	})

	replyCh := make(chan types.Reply, 1)
	run := NewRun(&types.InboundMessage{Sender: types.SenderKey("telegram:1"), Text: "notes"})
	run.OnComplete = func(reply types.Reply) { replyCh <- reply }

	if err := queue.Enqueue(run); err != nil {
		t.Fatal(err)
	}

	select {
	case reply := <-replyCh:
		if reply.Text == "" || reply.HasAudio() {
			t.Errorf("expected a textual apology, got %+v", reply)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error reply")
	}
}

func TestQueueNoProcessor(t *testing.T) {
	queue := NewQueue(1)
	ctx := context.Background()
	queue.Start(ctx)
	defer queue.Stop()

	// Enqueue without setting a processor -- should not panic
	run := NewRun(&types.InboundMessage{Sender: types.SenderKey("telegram:1"), Text: "bonjour"})
	if err := queue.Enqueue(run); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)
}
