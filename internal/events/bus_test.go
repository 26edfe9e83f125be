package events

import (
	"sync"
	"testing"
)

type testMsg struct {
	id  string
	seq int
}

func TestBusPreservesPerProducerOrder(t *testing.T) {
	bus := NewBus(16)

	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(testMsg{id: "a", seq: i})
		}
		bus.Close()
	}()

	last := -1
	for {
		msg, ok := bus.Next()
		if !ok {
			break
		}
		m := msg.(testMsg)
		if m.seq != last+1 {
			t.Fatalf("out of order: got seq %d after %d", m.seq, last)
		}
		last = m.seq
	}
	if last != 99 {
		t.Fatalf("received %d messages, want 100", last+1)
	}
}

func TestBusPublishAfterCloseIsNoop(t *testing.T) {
	bus := NewBus(1)
	bus.Close()
	// Must not panic or block.
	bus.Publish(testMsg{id: "late"})
	if _, ok := bus.Next(); ok {
		t.Fatal("expected drained bus after close")
	}
}

func TestBusConcurrentProducers(t *testing.T) {
	bus := NewBus(8)
	const producers = 4
	const each = 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < each; i++ {
				bus.Publish(testMsg{id: string(rune('a' + id)), seq: i})
			}
		}(p)
	}
	go func() {
		wg.Wait()
		bus.Close()
	}()

	lastSeq := map[string]int{}
	total := 0
	for {
		msg, ok := bus.Next()
		if !ok {
			break
		}
		m := msg.(testMsg)
		if prev, seen := lastSeq[m.id]; seen && m.seq != prev+1 {
			t.Fatalf("producer %s out of order: %d after %d", m.id, m.seq, prev)
		}
		lastSeq[m.id] = m.seq
		total++
	}
	if total != producers*each {
		t.Fatalf("received %d messages, want %d", total, producers*each)
	}
}
