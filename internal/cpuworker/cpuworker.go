// Package cpuworker implements the in-process, multi-threaded password
// tester: a fixed pool of goroutines pulling from a candidate stream,
// applying a cheap variant-specific rejection test, and escalating
// survivors to the authoritative Verifier.
package cpuworker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"archcrack/internal/hashextract"
	"archcrack/internal/skipset"
	"archcrack/internal/verify"
)

const progressBatchSize = 1000

// Progress is a snapshot of pool throughput, published atomically.
type Progress struct {
	TotalTested            uint64
	LastPassword           string
	DictionaryLinePosition int64
}

// Config wires a Pool to the archive being attacked.
type Config struct {
	Threads  int
	Info     *hashextract.HashInfo
	Verifier verify.Verifier
	Skip     *skipset.Set
}

// Pool runs Config.Threads worker goroutines against a candidate stream.
type Pool struct {
	cfg Config

	paused  atomic.Bool
	stopped atomic.Bool

	totalTested uint64 // atomic
	lastWord    atomic.Value
	lastLine    int64 // atomic

	hit chan string
}

// NewPool constructs a Pool ready to Run against a candidate stream.
func NewPool(cfg Config) *Pool {
	if cfg.Threads <= 0 {
		cfg.Threads = runtime.NumCPU()
	}
	p := &Pool{cfg: cfg, hit: make(chan string, 1)}
	p.lastWord.Store("")
	return p
}

// Pause cooperatively suspends all workers; takes effect within one batch.
func (p *Pool) Pause() { p.paused.Store(true) }

// Resume un-pauses all workers.
func (p *Pool) Resume() { p.paused.Store(false) }

// Stop signals all workers to exit after their current candidate.
func (p *Pool) Stop() { p.stopped.Store(true) }

// Progress returns a snapshot of the pool's counters.
func (p *Pool) Progress() Progress {
	word, _ := p.lastWord.Load().(string)
	return Progress{
		TotalTested:            atomic.LoadUint64(&p.totalTested),
		LastPassword:           word,
		DictionaryLinePosition: atomic.LoadInt64(&p.lastLine),
	}
}

// Run drains candidates across cfg.Threads workers until one of: a verified
// hit (returns the password), the stream is exhausted (returns "", nil), the
// context is cancelled, or Stop is called.
func (p *Pool) Run(ctx context.Context, candidates <-chan Candidate) (string, error) {
	var wg sync.WaitGroup
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for i := 0; i < p.cfg.Threads; i++ {
		wg.Add(1)
		go p.worker(workerCtx, &wg, candidates)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case word := <-p.hit:
		cancel()
		<-done
		return word, nil
	case <-done:
		select {
		case word := <-p.hit:
			return word, nil
		default:
			return "", ctx.Err()
		}
	case <-ctx.Done():
		cancel()
		<-done
		return "", ctx.Err()
	}
}

func (p *Pool) worker(ctx context.Context, wg *sync.WaitGroup, candidates <-chan Candidate) {
	defer wg.Done()
	var localCount uint64

	for {
		if p.stopped.Load() {
			return
		}
		for p.paused.Load() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(20 * time.Millisecond):
			}
		}

		select {
		case <-ctx.Done():
			return
		case c, ok := <-candidates:
			if !ok {
				if localCount > 0 {
					atomic.AddUint64(&p.totalTested, localCount)
				}
				return
			}
			p.testOne(c)

			localCount++
			if localCount >= progressBatchSize {
				atomic.AddUint64(&p.totalTested, localCount)
				localCount = 0
			}
		}
	}
}

func (p *Pool) testOne(c Candidate) {
	p.lastWord.Store(c.Password)
	if c.Line >= 0 {
		atomic.StoreInt64(&p.lastLine, c.Line)
	}

	if p.cfg.Skip != nil && p.cfg.Skip.Contains(c.Password) {
		return
	}
	if !fastReject(p.cfg.Info, c.Password) {
		return
	}

	ok, err := p.cfg.Verifier.Verify(c.Password)
	if err != nil || !ok {
		if p.cfg.Skip != nil {
			p.cfg.Skip.Add(c.Password)
		}
		return
	}

	select {
	case p.hit <- c.Password:
	default:
	}
	p.stopped.Store(true)
}
