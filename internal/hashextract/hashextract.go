// Package hashextract reads the salt, password-verifier, encrypted-data
// sample, and authentication data out of a fingerprinted archive and emits
// the canonical ASCII hash string the GPU worker's external cracker
// consumes.
package hashextract

import (
	"context"
	"errors"
	"fmt"

	"archcrack/internal/fingerprint"
)

// Compression identifies the method used on the archive's encrypted entry,
// needed to pick both the right GPU-cracker mode and the right
// decompression routine during verification.
type Compression int

const (
	CompressionStore Compression = 0
	CompressionDeflate Compression = 8
	CompressionDeflate64 Compression = 9
	CompressionLZMA Compression = 14
	CompressionReduce Compression = 2
)

var (
	ErrMalformedHeader      = errors.New("hashextract: malformed archive header")
	ErrExternalToolRequired = errors.New("hashextract: external helper required for this variant")
	ErrExternalToolFailed   = errors.New("hashextract: external helper failed")
)

// HashInfo is the variant-tagged bundle of data needed both to emit a
// canonical cracker hash string and to run the fast-rejection / verification
// paths later.
type HashInfo struct {
	Variant Variant

	EntryName   string
	Compression Compression

	// PKZIP
	CRC32Hi         byte
	TimeHi          byte
	EncryptedHeader [12]byte

	// WinZip AES
	AESStrength      int // 1, 2, or 3
	Salt             []byte
	PasswordVerifier [2]byte
	EncryptedSample  []byte
	AuthTag          [10]byte

	// RAR5
	KDFIterationsLog int
	CheckValue       [12]byte

	// RAR3
	RAR3HeaderEncrypted bool // true => encType 0 (headers encrypted)
	SampleBlock         [16]byte
	RAR3FileCRC         uint32 // stored CRC32 of the decrypted, decompressed entry; used by Verify, not emitted

	// SevenZip
	SevenZipHashLine string
}

// Variant mirrors fingerprint.Variant so this package does not force every
// caller to import fingerprint just to read a field.
type Variant = fingerprint.Variant

const (
	maxWinZipSample = 32 * 1024
)

// Extract dispatches to the per-variant extractor named by desc.Variant.
func Extract(ctx context.Context, desc *fingerprint.Descriptor) (*HashInfo, error) {
	switch desc.Variant {
	case fingerprint.PKZIP:
		return extractZIPFamily(desc.Path, desc.HeaderOffset)
	case fingerprint.SFXZip:
		return extractZIPFamily(desc.Path, desc.HeaderOffset)
	case fingerprint.RAR5:
		return extractRAR5(desc.Path, desc.HeaderOffset)
	case fingerprint.RAR3:
		return extractRAR3(desc.Path, desc.HeaderOffset)
	case fingerprint.SevenZip:
		return extractSevenZip(ctx, desc.Path)
	default:
		return nil, fingerprint.ErrUnsupported
	}
}

// Emit produces the canonical ASCII hash string for the GPU cracker.
func (h *HashInfo) Emit() (string, error) {
	switch h.Variant {
	case fingerprint.PKZIP:
		return fmt.Sprintf("$pkzip2$*%d*0*%02x*%02x*%x*$/pkzip2$",
			h.Compression, h.CRC32Hi, h.TimeHi, h.EncryptedHeader[:]), nil
	case fingerprint.WinZipAES:
		return fmt.Sprintf("$zip2$*0*%d*0*%x*%x*%x*%x*%x*$/zip2$",
			h.AESStrength, h.Salt, h.PasswordVerifier[:], len(h.EncryptedSample),
			h.EncryptedSample, h.AuthTag[:]), nil
	case fingerprint.RAR5:
		return fmt.Sprintf("$rar5$16$%x$15$%x$8$%d", h.Salt, h.CheckValue[:], h.KDFIterationsLog), nil
	case fingerprint.RAR3:
		encType := 1
		if h.RAR3HeaderEncrypted {
			encType = 0
		}
		return fmt.Sprintf("$RAR3$*%d*%x*%x", encType, h.Salt, h.SampleBlock[:]), nil
	case fingerprint.SevenZip:
		return h.SevenZipHashLine, nil
	default:
		return "", fingerprint.ErrUnsupported
	}
}

// HashcatMode returns the GPU cracker's -m value for this hash.
func (h *HashInfo) HashcatMode() (int, error) {
	switch h.Variant {
	case fingerprint.PKZIP:
		switch h.Compression {
		case CompressionStore:
			return 17200, nil
		case CompressionDeflate:
			return 17210, nil
		case CompressionDeflate64:
			return 17220, nil
		case CompressionLZMA:
			return 17230, nil
		default:
			return 17225, nil
		}
	case fingerprint.WinZipAES:
		return 13600, nil
	case fingerprint.RAR3:
		if h.RAR3HeaderEncrypted {
			return 23800, nil
		}
		return 12500, nil
	case fingerprint.RAR5:
		return 13000, nil
	case fingerprint.SevenZip:
		return 11600, nil
	default:
		return 0, fingerprint.ErrUnsupported
	}
}
