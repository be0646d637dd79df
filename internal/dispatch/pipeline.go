package dispatch

import "context"

// Pipeline runs the progressive synthesis-and-playback overlap used by the
// neural-GPU back-end: sentences are generated sequentially into a slot
// array while playback consumes slots in order, one generation running
// concurrently with at most one playback. Re-expressed as an explicit
// event-driven state machine rather than promise-and-flag control flow.
type Pipeline struct {
	Generate func(ctx context.Context, sentence string) ([]byte, error)
	Play     func(ctx context.Context, audio []byte) error
}

type slotFilled struct{ index int }
type playerExited struct {
	index int
	err   error
}
type generationDone struct{}

// Run executes the algorithm described for the progressive pipeline: it
// returns once generation has finished every sentence and playback has
// consumed every populated slot. Playback errors for individual slots are
// not fatal to the pipeline; they are collected and returned together.
func (p *Pipeline) Run(ctx context.Context, sentences []string) []error {
	n := len(sentences)
	if n == 0 {
		return nil
	}

	slots := make([][]byte, n)
	filled := make([]bool, n)
	events := make(chan any, n*2+1)

	go func() {
		for i, s := range sentences {
			audio, err := p.Generate(ctx, s)
			if err != nil {
				audio = nil // zero-length: the slot is skipped below
			}
			slots[i] = audio
			events <- slotFilled{index: i}
		}
		events <- generationDone{}
	}()

	var playErrs []error
	cursor := 0
	playing := false
	genDone := false

	startPlay := func(i int) {
		playing = true
		go func(i int) {
			err := p.Play(ctx, slots[i])
			events <- playerExited{index: i, err: err}
		}(i)
	}

	advance := func() {
		cursor++
		for cursor < n && filled[cursor] && len(slots[cursor]) == 0 {
			cursor++
		}
	}

	for {
		ev := <-events
		switch e := ev.(type) {
		case slotFilled:
			filled[e.index] = true
			if !playing && e.index == cursor {
				if len(slots[cursor]) == 0 {
					advance()
					if cursor < n && filled[cursor] && len(slots[cursor]) > 0 {
						startPlay(cursor)
					}
				} else {
					startPlay(cursor)
				}
			}

		case playerExited:
			playing = false
			if e.err != nil {
				playErrs = append(playErrs, e.err)
			}
			advance()
			if cursor < n && filled[cursor] {
				if len(slots[cursor]) > 0 {
					startPlay(cursor)
				} else {
					advance()
					if cursor < n && filled[cursor] && len(slots[cursor]) > 0 {
						startPlay(cursor)
					}
				}
			}
			if cursor >= n && genDone {
				return playErrs
			}

		case generationDone:
			genDone = true
			if cursor >= n && !playing {
				return playErrs
			}
		}
	}
}
