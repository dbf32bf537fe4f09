package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"archcrack/internal/fingerprint"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewFingerprintCmd configures the 'fingerprint' command.
func NewFingerprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fingerprint <archive>",
		Short:   "Identify an archive's format and encryption scheme",
		Long:    `Detects PKZIP, WinZip AES, RAR3, RAR5, or 7-Zip, including inside self-extracting EXEs.`,
		Example: `  archcrack fingerprint secret.zip`,
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			printCommandHeader("ARCHIVE FINGERPRINT")
			archivePath := args[0]

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start("Scanning " + filepath.Base(archivePath))
			desc, err := fingerprint.FingerprintWithRetry(ctx, archivePath, 3)
			spinner.Stop()

			if err != nil {
				handleCmdError("Fingerprint failed: %v", err)
			}

			pterm.Success.Printf("Detected %s\n", desc.Variant)
			data := [][]string{
				{"Archive", filepath.Base(desc.Path)},
				{"Variant", desc.Variant.String()},
				{"Encrypted Entry", desc.EncryptedEntryName},
				{"Header Offset", fmt.Sprintf("%d", desc.HeaderOffset)},
			}
			pterm.DefaultTable.WithBoxed().WithData(data).Render()
		},
	}
	return cmd
}
