package cpuworker

import (
	"bufio"
	"context"
	"os"

	"archcrack/internal/phaseplan"
)

// Candidate is one password to test, tagged with its position in the
// originating source so progress can be checkpointed and resumed exactly.
type Candidate struct {
	Password string
	Line     int64 // dictionary line number; -1 for brute-force candidates
}

// DictionaryCandidates streams non-blank lines from path into out, starting
// at resumeFromLine (0-based), until the file is exhausted or ctx is
// cancelled. Cancellation unblocks a pending send so the producer goroutine
// never outlives a pool that stops early.
func DictionaryCandidates(ctx context.Context, path string, resumeFromLine int64) (<-chan Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	out := make(chan Candidate, 256)
	go func() {
		defer f.Close()
		defer close(out)

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		var line int64
		for scanner.Scan() {
			current := line
			line++
			if current < resumeFromLine {
				continue
			}
			text := scanner.Text()
			if text == "" {
				continue
			}
			select {
			case out <- Candidate{Password: text, Line: current}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// BruteForceCandidates expands a single phase's mask into every candidate
// password it denotes, in lexicographic odometer order (rightmost position
// advances fastest), so the stream can be resumed at an exact position by
// skipping the first n candidates.
func BruteForceCandidates(ctx context.Context, phase phaseplan.Phase) <-chan Candidate {
	out := make(chan Candidate, 256)
	alphabet := alphabetFor(phase)

	go func() {
		defer close(out)
		length := len(phase.Mask) / 2 // each mask token is 2 runes, e.g. "?d"
		if length == 0 {
			return
		}
		indices := make([]int, length)
		for {
			select {
			case out <- Candidate{Password: buildFromIndices(alphabet, indices), Line: -1}:
			case <-ctx.Done():
				return
			}
			if !increment(indices, len(alphabet)) {
				return
			}
		}
	}()
	return out
}

func alphabetFor(phase phaseplan.Phase) []byte {
	tokens := phase.Charset
	if tokens == "" {
		tokens = phase.Mask[:2]
	}
	var set []byte
	for i := 0; i+2 <= len(tokens); i += 2 {
		set = append(set, charsetForToken(tokens[i:i+2])...)
	}
	return set
}

func charsetForToken(tok string) []byte {
	switch tok {
	case phaseplan.TokenDigits:
		return []byte("0123456789")
	case phaseplan.TokenLower:
		return []byte("abcdefghijklmnopqrstuvwxyz")
	case phaseplan.TokenUpper:
		return []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	case phaseplan.TokenSymbol:
		return []byte("!@#$%^&*()-_=+")
	default:
		return nil
	}
}

func buildFromIndices(alphabet []byte, indices []int) string {
	b := make([]byte, len(indices))
	for i, idx := range indices {
		b[i] = alphabet[idx]
	}
	return string(b)
}

func increment(indices []int, base int) bool {
	for i := len(indices) - 1; i >= 0; i-- {
		indices[i]++
		if indices[i] < base {
			return true
		}
		indices[i] = 0
	}
	return false
}
