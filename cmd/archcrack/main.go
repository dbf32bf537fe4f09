// Package main implements the command-line interface for archcrack.
package main

import (
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const version = "0.0.0-dev"

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates and configures the main 'archcrack' command and its
// subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "archcrack",
		Short:   "archcrack: password recovery for encrypted ZIP, RAR, and 7z archives.",
		Version: version,
		Long: `archcrack fingerprints an encrypted archive, extracts a hashcat-compatible
hash, and drives CPU and GPU workers through a dictionary and/or brute-force
plan to recover the password.`,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noStyle, _ := cmd.Flags().GetBool("no-style"); noStyle {
				pterm.DisableStyling()
				pterm.DisableColor()
			}
		},
	}

	rootCmd.SetVersionTemplate(`{{printf "archcrack version %s\n" .Version}}`)
	rootCmd.PersistentFlags().Bool("no-style", false, "Disable all styling and colors")

	rootCmd.AddCommand(
		NewFingerprintCmd(),
		NewHashCmd(),
		NewPlanCmd(),
		NewAttackCmd(),
		NewResumeCmd(),
	)

	return rootCmd
}

// handleCmdError prints a formatted error message and exits the application.
func handleCmdError(format string, a ...interface{}) {
	pterm.Error.Printf(format+"\n", a...)
	os.Exit(1)
}

// printCommandHeader displays the standard title banner for a command.
func printCommandHeader(title string) {
	pterm.DefaultHeader.WithFullWidth().WithBackgroundStyle(pterm.NewStyle(pterm.BgBlack)).
		WithTextStyle(pterm.NewStyle(pterm.FgCyan, pterm.Bold)).Println(title)
}

// defaultHashFilePath derives the sibling .hash file path for an archive.
func defaultHashFilePath(archivePath string) string {
	return archivePath + ".hash"
}

// defaultCheckpointDir returns the directory archcrack keeps checkpoints and
// settings under.
func defaultCheckpointDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dir := filepath.Join(home, ".archcrack")
	_ = os.MkdirAll(dir, 0o755)
	return dir
}
