package mailbox

import (
	"testing"

	"github.com/nyxvm/corevm/config"
	"github.com/nyxvm/corevm/galloc"
	"github.com/nyxvm/corevm/object"
)

func newTestMailbox(t *testing.T) (*Mailbox, *galloc.GlobalAllocator) {
	t.Helper()
	g := galloc.New(config.Default())
	m, err := New(g, 4*1024*1024)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return m, g
}

func TestSendFromExternalDeepCopiesAndQueues(t *testing.T) {
	m, _ := newTestMailbox(t)

	g := galloc.New(config.Default())
	srcAlloc, err := NewAllocator(g, 1<<20)
	if err != nil {
		t.Fatalf("NewAllocator error: %v", err)
	}
	src := srcAlloc.AllocateCopy(object.New(object.Int{N: 9}))

	m.SendFromExternal(src)

	if !m.HasMessages() {
		t.Fatalf("expected a pending message after SendFromExternal")
	}
	if len(m.External) != 1 {
		t.Fatalf("expected 1 external entry, got %d", len(m.External))
	}
	if m.External[0].Equal(src) {
		t.Fatalf("expected the external entry to be a distinct deep copy")
	}
}

func TestSendFromSelfDoesNotCopy(t *testing.T) {
	m, _ := newTestMailbox(t)

	p := m.Allocator.AllocateCopy(object.New(object.None{}))
	m.SendFromSelf(p)

	got, shouldMove, ok := m.Receive()
	if !ok {
		t.Fatalf("expected a message to be receivable")
	}
	if shouldMove {
		t.Fatalf("expected a self-sent message not to require a move")
	}
	if !got.Equal(p) {
		t.Fatalf("expected to receive back the exact same pointer")
	}
}

func TestReceiveFIFOOrderAndExternalFlag(t *testing.T) {
	m, _ := newTestMailbox(t)

	self := m.Allocator.AllocateCopy(object.New(object.None{}))
	m.SendFromSelf(self)
	m.SendFromExternal(self)

	_, shouldMove1, ok1 := m.Receive()
	_, shouldMove2, ok2 := m.Receive()

	if !ok1 || !ok2 {
		t.Fatalf("expected both messages to be receivable")
	}
	if shouldMove1 {
		t.Fatalf("expected the first (self-sent) message not to require a move")
	}
	if !shouldMove2 {
		t.Fatalf("expected the second (externally-sent) message to require a move")
	}

	if m.HasMessages() {
		t.Fatalf("expected the queue to be empty after draining both messages")
	}
}

func TestReceiveOnEmptyQueue(t *testing.T) {
	m, _ := newTestMailbox(t)

	_, _, ok := m.Receive()
	if ok {
		t.Fatalf("expected Receive on an empty queue to report not-ok")
	}
}

func TestMailboxPointersTracksExternalOnly(t *testing.T) {
	m, _ := newTestMailbox(t)

	self := m.Allocator.AllocateCopy(object.New(object.None{}))
	m.SendFromSelf(self)
	m.SendFromExternal(self)

	roots := m.MailboxPointers()
	if len(roots) != 1 {
		t.Fatalf("expected 1 externally-sent root, got %d", len(roots))
	}
}

func TestShouldCollectThreshold(t *testing.T) {
	g := galloc.New(config.Default())
	a, err := NewAllocator(g, 64)
	if err != nil {
		t.Fatalf("NewAllocator error: %v", err)
	}

	if a.ShouldCollect() {
		t.Fatalf("expected a fresh allocator not to need collection")
	}

	for i := 0; i < 3; i++ {
		a.AllocateCopy(object.New(object.None{}))
	}

	if !a.ShouldCollect() {
		t.Fatalf("expected the threshold to trip after enough allocations")
	}

	a.ResetCounter()
	if a.ShouldCollect() {
		t.Fatalf("expected the counter reset to clear the threshold trip")
	}
}
