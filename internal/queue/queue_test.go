package queue

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestQueueProcessesInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var order []string

	q := New(ctx, func(ctx context.Context, item *Item) {
		time.Sleep(2 * time.Millisecond)
		mu.Lock()
		order = append(order, item.Text)
		mu.Unlock()
	})

	items := []*Item{{Text: "one"}, {Text: "two"}, {Text: "three"}}
	for _, it := range items {
		if !q.Enqueue(it) {
			t.Fatalf("enqueue unexpectedly dropped")
		}
	}

	for _, it := range items {
		<-it.Resolved()
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != "one" || order[1] != "two" || order[2] != "three" {
		t.Fatalf("unexpected processing order: %v", order)
	}
}

func TestQueueNeverOverlaps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var active int32
	var mu sync.Mutex
	overlapped := false

	q := New(ctx, func(ctx context.Context, item *Item) {
		mu.Lock()
		active++
		if active > 1 {
			overlapped = true
		}
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
	})

	var items []*Item
	for i := 0; i < 20; i++ {
		it := &Item{Text: "x"}
		items = append(items, it)
		q.Enqueue(it)
	}
	for _, it := range items {
		<-it.Resolved()
	}

	if overlapped {
		t.Fatal("handler ran concurrently for more than one item")
	}
}

func TestQueueDropsNewestOverCapacity(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	block := make(chan struct{})
	q := New(ctx, func(ctx context.Context, item *Item) {
		<-block
	})

	var items []*Item
	for i := 0; i < MaxDepth+5; i++ {
		it := &Item{Text: "x"}
		items = append(items, it)
		q.Enqueue(it)
	}

	dropped := 0
	for _, it := range items[1:] {
		select {
		case <-it.Resolved():
			dropped++
		default:
		}
	}
	if dropped != 5 {
		t.Fatalf("expected 5 items dropped over MaxDepth, got %d", dropped)
	}

	close(block)
}
