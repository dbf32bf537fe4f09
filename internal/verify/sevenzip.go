package verify

import (
	"context"
	"os/exec"

	"archcrack/internal/extern"
	"archcrack/internal/hashextract"
)

// sevenZipArchiver is the standard 7-Zip command-line tool, used here only
// to run the authoritative "does this password open the archive" test; the
// hash-extraction path in internal/hashextract uses a different helper
// (7z2john) to produce the offline hash.
var sevenZipArchiver = extern.Tool{
	Name:        "7z",
	SearchNames: []string{"7z", "7zz", "7za"},
	VersionFlag: "--help",
}

type sevenZipVerifier struct {
	archivePath string
}

func newSevenZipVerifier(archivePath string, _ *hashextract.HashInfo) *sevenZipVerifier {
	return &sevenZipVerifier{archivePath: archivePath}
}

func (v *sevenZipVerifier) Verify(password string) (bool, error) {
	located, err := extern.Locate(context.Background(), sevenZipArchiver)
	if err != nil {
		return false, err
	}
	cmd := exec.Command(located.Path, "t", "-p"+password, v.archivePath)
	err = cmd.Run()
	return err == nil, nil
}
