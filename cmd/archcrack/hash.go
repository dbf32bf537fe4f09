package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"archcrack/internal/fingerprint"
	"archcrack/internal/hashextract"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewHashCmd configures the 'hash' command.
func NewHashCmd() *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:     "hash <archive>",
		Short:   "Extract a hashcat-compatible hash from an archive",
		Long:    `Fingerprints the archive, pulls the salt/verifier/sample for its variant, and prints the canonical hash string plus the suggested -m mode.`,
		Example: `  archcrack hash secret.zip`,
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			printCommandHeader("HASH EXTRACTION")
			archivePath := args[0]
			if outFile == "" {
				outFile = defaultHashFilePath(archivePath)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start("Fingerprinting " + filepath.Base(archivePath))
			desc, err := fingerprint.FingerprintWithRetry(ctx, archivePath, 3)
			spinner.Stop()
			if err != nil {
				handleCmdError("Fingerprint failed: %v", err)
			}

			info, err := hashextract.Extract(ctx, desc)
			if err != nil {
				handleCmdError("Hash extraction failed: %v", err)
			}

			hash, err := info.Emit()
			if err != nil {
				handleCmdError("Could not format hash: %v", err)
			}
			mode, err := info.HashcatMode()
			if err != nil {
				handleCmdError("Could not determine cracker mode: %v", err)
			}

			if err := os.WriteFile(outFile, []byte(hash+"\n"), 0o644); err != nil {
				handleCmdError("Could not write %s: %v", outFile, err)
			}

			pterm.Success.Println("Hash extracted.")
			data := [][]string{
				{"Variant", desc.Variant.String()},
				{"Hashcat Mode", fmt.Sprintf("-m %d", mode)},
				{"Hash File", outFile},
			}
			pterm.DefaultTable.WithBoxed().WithData(data).Render()
			pterm.DefaultBox.WithTitle("Hash").Println(hash)
		},
	}
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Path to write the .hash file (default: <archive>.hash)")
	return cmd
}
