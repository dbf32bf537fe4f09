package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"archcrack/internal/checkpoint"
	"archcrack/internal/fingerprint"
	"archcrack/internal/hashextract"
	"archcrack/internal/kvstore"
	"archcrack/internal/orchestrator"
	"archcrack/internal/phaseplan"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewAttackCmd configures the 'attack' command.
func NewAttackCmd() *cobra.Command {
	var (
		dictionary                    string
		useCPU, useGPU                bool
		threads                       int
		gpuBinary                     string
		digits, lower, upper, symbol  bool
		minLen, maxLen                int
		strategy                      string
		resumeFlag                    bool
	)
	cmd := &cobra.Command{
		Use:     "attack <archive>",
		Short:   "Recover an archive's password",
		Long:    `Builds an attack plan and runs the CPU and/or GPU workers against the archive until a password is found, the plan is exhausted, or the run is cancelled.`,
		Example: `  archcrack attack secret.zip --dictionary rockyou.txt --cpu`,
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			printCommandHeader("ARCHIVE ATTACK")
			archivePath := args[0]

			settings, err := kvstore.NewFileStore(filepath.Join(defaultCheckpointDir(), "settings.json"))
			if err != nil {
				handleCmdError("Could not open settings store: %v", err)
			}

			if !useCPU && !useGPU {
				useCPU = true
			}
			if threads == 0 {
				if v, ok := settings.Get(kvstore.KeyDefaultThreads); ok {
					if n, err := strconv.Atoi(v); err == nil {
						threads = n
					}
				}
			}
			if useGPU && gpuBinary == "" {
				gpuBinary, _ = settings.Get(kvstore.KeyGPUCrackerPath)
				if gpuBinary == "" {
					handleCmdError("GPU cracking requested but no cracker binary configured (use --gpu-binary)")
				}
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			installSignalHandler(cancel)

			ctxFp, cancelFp := context.WithTimeout(ctx, 30*time.Second)
			defer cancelFp()

			spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start("Fingerprinting " + filepath.Base(archivePath))
			desc, err := fingerprint.FingerprintWithRetry(ctxFp, archivePath, 3)
			spinner.Stop()
			if err != nil {
				handleCmdError("Fingerprint failed: %v", err)
			}

			info, err := hashextract.Extract(ctxFp, desc)
			if err != nil {
				handleCmdError("Hash extraction failed: %v", err)
			}

			var plan []phaseplan.Phase
			if dictionary == "" {
				strat, serr := parseStrategy(strategy)
				if serr != nil {
					handleCmdError("%v", serr)
				}
				plan, err = phaseplan.Plan(phaseplan.Selection{
					Digits: digits, Lower: lower, Upper: upper, Special: symbol,
					MinLen: minLen, MaxLen: maxLen,
				}, strat)
				if err != nil {
					handleCmdError("Invalid plan: %v", err)
				}
			}

			cfg := orchestrator.Config{
				ArchivePath:    archivePath,
				Info:           info,
				Plan:           plan,
				DictionaryPath: dictionary,
				UseCPU:         useCPU,
				UseGPU:         useGPU,
				Threads:        threads,
				GPUBinaryPath:  gpuBinary,
				CheckpointDir:  defaultCheckpointDir(),
				Resume:         resumeFlag,
			}

			runAttack(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&dictionary, "dictionary", "", "Wordlist to run on the CPU worker")
	cmd.Flags().BoolVar(&useCPU, "cpu", false, "Enable the CPU worker")
	cmd.Flags().BoolVar(&useGPU, "gpu", false, "Enable the GPU worker (requires an external cracker)")
	cmd.Flags().IntVar(&threads, "threads", 0, "CPU worker thread count (default: all logical CPUs)")
	cmd.Flags().StringVar(&gpuBinary, "gpu-binary", "", "Path to the GPU cracker binary")
	cmd.Flags().BoolVar(&digits, "digits", true, "Brute-force charset: digits")
	cmd.Flags().BoolVar(&lower, "lower", true, "Brute-force charset: lowercase")
	cmd.Flags().BoolVar(&upper, "upper", false, "Brute-force charset: uppercase")
	cmd.Flags().BoolVar(&symbol, "symbols", false, "Brute-force charset: symbols")
	cmd.Flags().IntVar(&minLen, "min", 4, "Brute-force minimum length")
	cmd.Flags().IntVar(&maxLen, "max", 8, "Brute-force maximum length")
	cmd.Flags().StringVar(&strategy, "strategy", "smart-mix", "length-first, pattern-first, smart-mix, or common-first")
	cmd.Flags().BoolVar(&resumeFlag, "resume", false, "Resume from a saved checkpoint if one exists")
	return cmd
}

// NewResumeCmd configures the 'resume' command, a thin wrapper over attack
// that requires an existing checkpoint.
func NewResumeCmd() *cobra.Command {
	var (
		useCPU, useGPU bool
		threads        int
		gpuBinary      string
	)
	cmd := &cobra.Command{
		Use:     "resume <archive>",
		Short:   "Resume a previously interrupted attack",
		Long:    `Loads the checkpoint for the archive and re-enters the attack at the saved position. Fails clearly if no checkpoint exists.`,
		Example: `  archcrack resume secret.zip`,
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			printCommandHeader("RESUME ATTACK")
			archivePath := args[0]

			ckpt, err := checkpoint.NewManager(defaultCheckpointDir())
			if err != nil {
				handleCmdError("Could not open checkpoint store: %v", err)
			}
			state, err := ckpt.Load(archivePath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					handleCmdError("No checkpoint found for %s; run 'attack' to start one.", archivePath)
				}
				handleCmdError("Could not load checkpoint: %v", err)
			}

			if !useCPU && !useGPU {
				useCPU = state.WorkerConfig.UseCPU
				useGPU = state.WorkerConfig.UseGPU
			}
			if threads == 0 {
				threads = state.WorkerConfig.Threads
			}
			if useGPU && gpuBinary == "" {
				settings, err := kvstore.NewFileStore(filepath.Join(defaultCheckpointDir(), "settings.json"))
				if err != nil {
					handleCmdError("Could not open settings store: %v", err)
				}
				gpuBinary, _ = settings.Get(kvstore.KeyGPUCrackerPath)
				if gpuBinary == "" {
					handleCmdError("GPU cracking requested but no cracker binary configured (use --gpu-binary)")
				}
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			installSignalHandler(cancel)

			ctxFp, cancelFp := context.WithTimeout(ctx, 30*time.Second)
			defer cancelFp()

			spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start("Re-fingerprinting " + filepath.Base(archivePath))
			desc, err := fingerprint.FingerprintWithRetry(ctxFp, archivePath, 3)
			spinner.Stop()
			if err != nil {
				handleCmdError("Fingerprint failed: %v", err)
			}
			info, err := hashextract.Extract(ctxFp, desc)
			if err != nil {
				handleCmdError("Hash extraction failed: %v", err)
			}

			cfg := orchestrator.Config{
				ArchivePath:   archivePath,
				Info:          info,
				UseCPU:        useCPU,
				UseGPU:        useGPU,
				Threads:       threads,
				GPUBinaryPath: gpuBinary,
				CheckpointDir: defaultCheckpointDir(),
				Resume:        true,
			}
			runAttack(ctx, cfg)
		},
	}
	cmd.Flags().BoolVar(&useCPU, "cpu", false, "Override: enable the CPU worker")
	cmd.Flags().BoolVar(&useGPU, "gpu", false, "Override: enable the GPU worker")
	cmd.Flags().IntVar(&threads, "threads", 0, "Override: CPU worker thread count")
	cmd.Flags().StringVar(&gpuBinary, "gpu-binary", "", "Path to the GPU cracker binary")
	return cmd
}

func runAttack(ctx context.Context, cfg orchestrator.Config) {
	orch, err := orchestrator.New(cfg)
	if err != nil {
		handleCmdError("Could not start attack: %v", err)
	}

	pterm.DefaultSection.Println("Processing")
	spinner, _ := pterm.DefaultSpinner.Start("Searching...")

	startTime := time.Now()
	password, err := orch.Run(ctx)
	spinner.Stop()
	duration := time.Since(startTime).Round(time.Second)

	pterm.DefaultSection.Println("Mission Report")
	switch orch.Status() {
	case orchestrator.Found:
		pterm.Success.Println("Password recovered.")
		data := [][]string{
			{"Archive", cfg.ArchivePath},
			{"Password", password},
			{"Time Elapsed", duration.String()},
			{"Status", "FOUND"},
		}
		pterm.DefaultTable.WithBoxed().WithData(data).Render()
	case orchestrator.Cancelled:
		pterm.Warning.Println("Attack cancelled; checkpoint saved for resume.")
	case orchestrator.Exhausted:
		pterm.Error.Println("Search space exhausted without finding the password.")
	default:
		if err != nil {
			handleCmdError("Attack failed: %v", err)
		}
	}
}

func installSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		pterm.Warning.Println("\nInterrupt received, stopping and saving checkpoint...")
		cancel()
	}()
}
