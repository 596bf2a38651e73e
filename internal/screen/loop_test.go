package screen

import (
	"sync"
	"testing"
)

func TestLoopRunsEventsInOrder(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	var got []int
	for i := 0; i < 10; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	var snapshot []int
	l.Do(func() { snapshot = append(snapshot, got...) })

	if len(snapshot) != 10 {
		t.Fatalf("ran %d events, want 10", len(snapshot))
	}
	for i, v := range snapshot {
		if v != i {
			t.Fatalf("event %d ran as %d", i, v)
		}
	}
}

func TestLoopSerializesConcurrentPosts(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Do(func() { counter++ })
		}()
	}
	wg.Wait()

	var final int
	l.Do(func() { final = counter })
	if final != 50 {
		t.Fatalf("counter = %d, want 50", final)
	}
}

func TestLoopClosedRejectsWork(t *testing.T) {
	l := NewLoop()
	l.Close()
	l.Close()

	if l.Post(func() { t.Error("ran after close") }) {
		t.Error("Post succeeded after Close")
	}
	if l.Do(func() { t.Error("ran after close") }) {
		t.Error("Do succeeded after Close")
	}
}
