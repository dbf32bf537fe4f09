package hashextract

import (
	"context"
	"strings"

	"archcrack/internal/extern"
	"archcrack/internal/fingerprint"
)

// sevenZipHelper describes the community 7-Zip hash extractor this program
// delegates to; no ecosystem Go library parses 7z AES headers on its own.
var sevenZipHelper = extern.Tool{
	Name:        "7z2john",
	SearchNames: []string{"7z2john", "7z2john.pl"},
	VersionFlag: "--version",
}

// extractSevenZip runs the external 7-Zip hash extractor and returns the
// hash line after the last colon, matching the field convention the GPU
// cracker's own output files use.
func extractSevenZip(ctx context.Context, path string) (*HashInfo, error) {
	located, err := extern.Locate(ctx, sevenZipHelper)
	if err != nil {
		return nil, ErrExternalToolRequired
	}

	out, err := extern.Run(ctx, located, path)
	if err != nil {
		return nil, ErrExternalToolFailed
	}

	line := strings.TrimSpace(out)
	idx := strings.LastIndex(line, ":")
	if idx < 0 || !strings.HasPrefix(line[idx+1:], "$7z$") {
		// Some extractor builds emit the hash as the whole line with no
		// filename prefix; accept that shape too.
		if strings.HasPrefix(line, "$7z$") {
			return &HashInfo{Variant: fingerprint.SevenZip, SevenZipHashLine: line}, nil
		}
		return nil, ErrMalformedHeader
	}

	return &HashInfo{Variant: fingerprint.SevenZip, SevenZipHashLine: line[idx+1:]}, nil
}
