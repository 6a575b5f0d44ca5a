package bus

import (
	"sync"
	"testing"

	"github.com/rainycowork/cowork/pkg/models"
)

func TestSendAndReceive(t *testing.T) {
	b := New()

	sent := b.Send("director-1", "researcher-1", models.Message{
		Type:   models.MessageTaskAssign,
		TaskID: "task-1",
	})

	if sent.ID == "" {
		t.Error("expected message ID to be assigned")
	}
	if sent.From != "director-1" || sent.To != "researcher-1" {
		t.Errorf("unexpected routing: from=%s to=%s", sent.From, sent.To)
	}

	msgs := b.Receive("researcher-1")
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].TaskID != "task-1" {
		t.Errorf("expected task-1, got %s", msgs[0].TaskID)
	}
}

func TestReceiveDrainsQueue(t *testing.T) {
	b := New()
	b.Send("a", "b", models.Message{Type: models.MessageStatusUpdate})

	first := b.Receive("b")
	if len(first) != 1 {
		t.Fatalf("expected 1 message on first receive, got %d", len(first))
	}

	second := b.Receive("b")
	if len(second) != 0 {
		t.Errorf("expected empty queue on second receive, got %d", len(second))
	}
}

func TestReceiveEmptyQueue(t *testing.T) {
	b := New()
	msgs := b.Receive("nobody")
	if len(msgs) != 0 {
		t.Errorf("expected no messages, got %d", len(msgs))
	}
}

func TestBroadcastSkipsSender(t *testing.T) {
	b := New()
	b.Register("director-1")
	b.Register("researcher-1")
	b.Register("developer-1")

	n := b.Broadcast("director-1", models.Message{Type: models.MessageStatusUpdate})
	if n != 2 {
		t.Errorf("expected 2 deliveries, got %d", n)
	}

	if got := b.PendingCount("director-1"); got != 0 {
		t.Errorf("sender should not receive its own broadcast, has %d pending", got)
	}
	if got := b.PendingCount("researcher-1"); got != 1 {
		t.Errorf("expected 1 pending for researcher-1, got %d", got)
	}
	if got := b.PendingCount("developer-1"); got != 1 {
		t.Errorf("expected 1 pending for developer-1, got %d", got)
	}
}

func TestConcurrentSendReceive(t *testing.T) {
	b := New()
	const senders = 8
	const perSender = 50

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				b.Send("sender", "sink", models.Message{Type: models.MessageTaskResult})
			}
		}()
	}
	wg.Wait()

	total := len(b.Receive("sink"))
	if total != senders*perSender {
		t.Errorf("expected %d messages, got %d", senders*perSender, total)
	}
}
