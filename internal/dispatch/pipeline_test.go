package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestPipelineOrdering(t *testing.T) {
	sentences := []string{"First.", "Second.", "Third."}

	var mu sync.Mutex
	var playOrder []string
	generated := map[string]bool{}

	p := &Pipeline{
		Generate: func(ctx context.Context, sentence string) ([]byte, error) {
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			generated[sentence] = true
			mu.Unlock()
			return []byte(sentence), nil
		},
		Play: func(ctx context.Context, audio []byte) error {
			time.Sleep(2 * time.Millisecond)
			mu.Lock()
			playOrder = append(playOrder, string(audio))
			mu.Unlock()
			return nil
		},
	}

	errs := p.Run(context.Background(), sentences)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if len(playOrder) != 3 {
		t.Fatalf("expected 3 plays, got %d: %v", len(playOrder), playOrder)
	}
	for i, s := range sentences {
		if playOrder[i] != s {
			t.Errorf("play order[%d] = %q, want %q", i, playOrder[i], s)
		}
	}
}

func TestPipelineSkipsZeroLengthSlot(t *testing.T) {
	sentences := []string{"First.", "Second.", "Third."}

	var mu sync.Mutex
	var playOrder []string

	p := &Pipeline{
		Generate: func(ctx context.Context, sentence string) ([]byte, error) {
			if sentence == "Second." {
				return []byte{}, nil // zero-length: generation failed for this sentence
			}
			return []byte(sentence), nil
		},
		Play: func(ctx context.Context, audio []byte) error {
			mu.Lock()
			playOrder = append(playOrder, string(audio))
			mu.Unlock()
			return nil
		},
	}

	errs := p.Run(context.Background(), sentences)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if len(playOrder) != 2 {
		t.Fatalf("expected 2 plays (middle sentence skipped), got %v", playOrder)
	}
	if playOrder[0] != "First." || playOrder[1] != "Third." {
		t.Errorf("unexpected play order: %v", playOrder)
	}
}

func TestPipelineSingleSentenceStillWorks(t *testing.T) {
	var played bool
	p := &Pipeline{
		Generate: func(ctx context.Context, sentence string) ([]byte, error) {
			return []byte(sentence), nil
		},
		Play: func(ctx context.Context, audio []byte) error {
			played = true
			return nil
		},
	}

	errs := p.Run(context.Background(), []string{"Only one."})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !played {
		t.Fatal("expected the single sentence to be played")
	}
}
