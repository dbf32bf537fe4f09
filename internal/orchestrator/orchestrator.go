// Package orchestrator drives the CPU and GPU workers against a shared
// search space, arbitrates the first confirmed hit, and owns the attack's
// lifecycle and checkpointing.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"archcrack/internal/checkpoint"
	"archcrack/internal/cpuworker"
	"archcrack/internal/gpuworker"
	"archcrack/internal/hashextract"
	"archcrack/internal/phaseplan"
	"archcrack/internal/skipset"
	"archcrack/internal/verify"
)

// Status is the orchestrator's lifecycle state.
type Status int32

const (
	Idle Status = iota
	Running
	Paused
	Found
	Exhausted
	Cancelled
	Failed
)

// assumedGPUSpeedRatio is used to split the search space when no prior
// measurement of relative CPU/GPU throughput exists yet.
const assumedGPUSpeedRatio = 20

const checkpointInterval = 10 * time.Second

// Config wires an attack to its archive, plan, and worker selection.
type Config struct {
	ArchivePath    string
	Info           *hashextract.HashInfo
	Plan           []phaseplan.Phase
	DictionaryPath string

	UseCPU  bool
	UseGPU  bool
	Threads int

	GPUBinaryPath string
	CheckpointDir string
	Resume        bool
}

// Orchestrator runs one attack to completion, pause, or cancellation.
type Orchestrator struct {
	cfg Config

	status atomic.Int32
	skip   *skipset.Set
	verif  verify.Verifier
	ckpt   *checkpoint.Manager
	state  *checkpoint.State

	cpuPool *cpuworker.Pool
	mu      sync.Mutex
}

// New constructs an Orchestrator, building the verifier and checkpoint
// manager and, if cfg.Resume is set, loading any existing checkpoint.
func New(cfg Config) (*Orchestrator, error) {
	v, err := verify.New(cfg.ArchivePath, cfg.Info)
	if err != nil {
		return nil, err
	}
	ckpt, err := checkpoint.NewManager(cfg.CheckpointDir)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{cfg: cfg, skip: skipset.New(), verif: v, ckpt: ckpt}

	if cfg.Resume {
		if st, err := ckpt.Load(cfg.ArchivePath); err == nil {
			o.state = st
		}
	}
	if o.state == nil {
		o.state = &checkpoint.State{
			ArchivePath:    cfg.ArchivePath,
			WorkerConfig:   checkpoint.WorkerConfig{UseCPU: cfg.UseCPU, UseGPU: cfg.UseGPU, Threads: cfg.Threads},
			GPUTotalPhases: len(cfg.Plan),
			DictionaryPath: cfg.DictionaryPath,
			Plan:           cfg.Plan,
		}
	}

	// A resumed attack may not carry the plan/dictionary on its Config (the
	// 'resume' command only knows the archive path); fall back to whatever
	// the checkpoint itself recorded.
	if len(o.cfg.Plan) == 0 && len(o.state.Plan) > 0 {
		o.cfg.Plan = o.state.Plan
	}
	if o.cfg.DictionaryPath == "" && o.state.DictionaryPath != "" {
		o.cfg.DictionaryPath = o.state.DictionaryPath
	}

	o.status.Store(int32(Idle))
	return o, nil
}

// Status returns the orchestrator's current lifecycle state.
func (o *Orchestrator) Status() Status {
	return Status(o.status.Load())
}

// Allocate splits the remaining search space between CPU and GPU by their
// measured speed ratio (or the assumed default when unmeasured), with CPU
// taking the lower half of the range so its dictionary path runs
// front-loaded.
func Allocate(remainingStart, totalSearchSpace int64, useCPU, useGPU bool, cpuSpeed, gpuSpeed float64) checkpoint.WorkerAllocation {
	remaining := totalSearchSpace - remainingStart
	if remaining < 0 {
		remaining = 0
	}

	if useCPU && !useGPU {
		return checkpoint.WorkerAllocation{CPUStart: remainingStart, CPUEnd: totalSearchSpace}
	}
	if useGPU && !useCPU {
		return checkpoint.WorkerAllocation{GPUStart: remainingStart, GPUEnd: totalSearchSpace}
	}
	if !useCPU && !useGPU {
		return checkpoint.WorkerAllocation{}
	}

	if gpuSpeed <= 0 {
		gpuSpeed = cpuSpeed * assumedGPUSpeedRatio
	}
	if cpuSpeed <= 0 {
		cpuSpeed = 1
	}
	cpuShare := cpuSpeed / (cpuSpeed + gpuSpeed)
	cpuLen := int64(float64(remaining) * cpuShare)

	cpuEnd := remainingStart + cpuLen
	return checkpoint.WorkerAllocation{
		CPUStart: remainingStart,
		CPUEnd:   cpuEnd,
		GPUStart: cpuEnd,
		GPUEnd:   totalSearchSpace,
	}
}

// isContextDone reports whether err is either flavor of context expiry:
// an explicit Cancel call or a deadline/timeout running out.
func isContextDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Run drives the attack to completion. It returns the recovered password on
// a confirmed hit, or an empty string with a terminal status describing why
// the run ended.
func (o *Orchestrator) Run(ctx context.Context) (string, error) {
	o.status.Store(int32(Running))
	start := time.Now()

	o.state.WorkerAllocation = Allocate(0, o.state.TotalSearchSpace, o.cfg.UseCPU, o.cfg.UseGPU, 1, 0)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		password string
		err      error
	}
	results := make(chan result, 2)
	var wg sync.WaitGroup

	o.startCheckpointTicker(runCtx, start)

	if o.cfg.UseCPU {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pw, err := o.runCPU(runCtx)
			results <- result{pw, err}
		}()
	}
	if o.cfg.UseGPU {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pw, err := o.runGPU(runCtx)
			results <- result{pw, err}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var found string
	var firstErr error
	for r := range results {
		if r.password != "" && found == "" {
			found = r.password
			cancel()
		}
		if r.err != nil && firstErr == nil && !isContextDone(r.err) {
			firstErr = r.err
		}
	}

	o.state.ElapsedSeconds += time.Since(start).Seconds()

	switch {
	case found != "":
		o.status.Store(int32(Found))
		_ = o.ckpt.Delete(o.cfg.ArchivePath)
		return found, nil
	case firstErr != nil:
		o.status.Store(int32(Failed))
		return "", firstErr
	case isContextDone(ctx.Err()):
		o.status.Store(int32(Cancelled))
		_ = o.ckpt.Save(o.state)
		return "", ctx.Err()
	default:
		o.status.Store(int32(Exhausted))
		_ = o.ckpt.Delete(o.cfg.ArchivePath)
		return "", nil
	}
}

func (o *Orchestrator) runCPU(ctx context.Context) (string, error) {
	o.mu.Lock()
	o.cpuPool = cpuworker.NewPool(cpuworker.Config{
		Threads:  o.cfg.Threads,
		Info:     o.cfg.Info,
		Verifier: o.verif,
		Skip:     o.skip,
	})
	pool := o.cpuPool
	o.mu.Unlock()

	if o.cfg.DictionaryPath != "" {
		candidates, err := cpuworker.DictionaryCandidates(ctx, o.cfg.DictionaryPath, o.state.DictionaryLinePosition)
		if err != nil {
			return "", fmt.Errorf("orchestrator: opening dictionary: %w", err)
		}
		word, err := pool.Run(ctx, candidates)
		progress := pool.Progress()
		o.state.CPUAttempts += progress.TotalTested
		o.state.DictionaryLinePosition = progress.DictionaryLinePosition
		return word, err
	}

	// Brute-force candidates are organized into phases (short lengths
	// first, then longer, etc.); run each to exhaustion in order, same as
	// the GPU driver does with its own phase list.
	for i := o.state.CPUCurrentPhase; i < len(o.cfg.Plan); i++ {
		o.state.CPUCurrentPhase = i
		candidates := cpuworker.BruteForceCandidates(ctx, o.cfg.Plan[i])
		word, err := pool.Run(ctx, candidates)
		progress := pool.Progress()
		o.state.CPUAttempts += progress.TotalTested
		if word != "" || err != nil {
			return word, err
		}
	}
	o.state.CPUCurrentPhase = len(o.cfg.Plan)
	return "", nil
}

func (o *Orchestrator) runGPU(ctx context.Context) (string, error) {
	outFile := o.cfg.ArchivePath + ".out"
	hashFile := o.cfg.ArchivePath + ".hash"
	mode, err := o.cfg.Info.HashcatMode()
	if err != nil {
		return "", err
	}

	hashLine, err := o.cfg.Info.Emit()
	if err != nil {
		return "", fmt.Errorf("orchestrator: building hash line: %w", err)
	}
	if err := os.WriteFile(hashFile, []byte(hashLine+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("orchestrator: writing hash file: %w", err)
	}

	driver := gpuworker.New(gpuworker.Config{
		BinaryPath: o.cfg.GPUBinaryPath,
		HashFile:   hashFile,
		HashMode:   mode,
		OutFile:    outFile,
	})

	startPhase := o.state.GPUCurrentPhase
	if startPhase == 0 {
		startPhase = 1
	}

	// attemptsBeforePhase is the cumulative GPU attempt count carried over
	// from completed phases; each phase's own Progress: done/total line is
	// itself cumulative within that phase, not a delta, so it is added on
	// top of this baseline rather than onto the running state total.
	attemptsBeforePhase := o.state.GPUAccumulatedAttempts

	for i := startPhase - 1; i < len(o.cfg.Plan); i++ {
		phase := o.cfg.Plan[i]
		events, err := driver.Start(ctx, phase)
		if err != nil {
			return "", fmt.Errorf("orchestrator: gpu phase %d: %w", i+1, err)
		}

		var phaseDone int64
		for ev := range events {
			if ev.ProgressTotal > 0 {
				pct := ev.ProgressPercent
				phaseDone = ev.ProgressDone
				o.state.ApplyGPUProgress(i+1, len(o.cfg.Plan), pct, attemptsBeforePhase+uint64(phaseDone))
			}
			if ev.Cracked {
				pw, rerr := gpuworker.ReadOutfile(outFile)
				if rerr == nil && pw != "" {
					ok, verr := o.verif.Verify(pw)
					if verr == nil && ok {
						return pw, nil
					}
					// A GPU hit that fails authoritative verification is a
					// false positive: record it and keep going, touching
					// no progress counters beyond the skip-set insertion.
					o.skip.Add(pw)
				}
			}
		}
		attemptsBeforePhase += uint64(phaseDone)

		select {
		case <-ctx.Done():
			driver.Stop()
			return "", ctx.Err()
		default:
		}
		driver.Stop()
	}
	return "", nil
}

// Reconfigure records newAlloc as the worker allocation and, if the CPU's
// current position is at or past the new CPU end, stops the CPU pool rather
// than letting it run past the new boundary. It does not start a
// replacement pool for the new range.
func (o *Orchestrator) Reconfigure(ctx context.Context, newAlloc checkpoint.WorkerAllocation) {
	o.mu.Lock()
	pool := o.cpuPool
	o.mu.Unlock()
	if pool == nil {
		return
	}
	if o.state.CPUCurrentPosition >= newAlloc.CPUEnd {
		pool.Stop()
	}
	o.state.WorkerAllocation = newAlloc
}

func (o *Orchestrator) Pause() {
	o.status.Store(int32(Paused))
	o.mu.Lock()
	if o.cpuPool != nil {
		o.cpuPool.Pause()
	}
	o.mu.Unlock()
}

func (o *Orchestrator) Resume() {
	o.status.Store(int32(Running))
	o.mu.Lock()
	if o.cpuPool != nil {
		o.cpuPool.Resume()
	}
	o.mu.Unlock()
}

// startCheckpointTicker saves the attack state on a fixed interval until
// ctx is cancelled, which happens when Run returns. It does not block the
// caller; Run's own completion already implies the ticker's context ends.
func (o *Orchestrator) startCheckpointTicker(ctx context.Context, start time.Time) {
	ticker := time.NewTicker(checkpointInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				o.state.ElapsedSeconds = time.Since(start).Seconds()
				_ = o.ckpt.Save(o.state)
			}
		}
	}()
}
