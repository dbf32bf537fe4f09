// Package verify implements the authoritative, definitive decrypt-and-confirm
// check for a single candidate password, one path per archive variant. A
// verifier returning false must never terminate an attack; only a true
// result is allowed to end it.
package verify

import (
	"archcrack/internal/fingerprint"
	"archcrack/internal/hashextract"
)

// Verifier performs the definitive check for one archive.
type Verifier interface {
	Verify(password string) (bool, error)
}

// New builds the Verifier appropriate for info.Variant.
func New(archivePath string, info *hashextract.HashInfo) (Verifier, error) {
	switch info.Variant {
	case fingerprint.PKZIP, fingerprint.WinZipAES:
		return newZipVerifier(archivePath, info)
	case fingerprint.RAR5:
		return newRAR5Verifier(info), nil
	case fingerprint.RAR3:
		return newRAR3Verifier(info), nil
	case fingerprint.SevenZip:
		return newSevenZipVerifier(archivePath, info), nil
	default:
		return nil, fingerprint.ErrUnsupported
	}
}
