package hashextract

import (
	"encoding/binary"

	"archcrack/internal/breader"
	"archcrack/internal/fingerprint"
)

const (
	zipLocalHeaderSig = 0x04034b50
	aesExtraID        = 0x9901
)

// extractZIPFamily parses the ZIP local file header at headerOffset,
// locates the first encrypted entry, and routes to the PKZIP or WinZip AES
// extractor depending on whether an AES extra field marker is present.
func extractZIPFamily(path string, headerOffset int64) (*HashInfo, error) {
	r, err := breader.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	offset := headerOffset
	for {
		if err := r.SeekTo(offset); err != nil {
			return nil, fingerprint.ErrNoEncryptedEntry
		}
		sig, err := r.U32LE()
		if err != nil {
			return nil, fingerprint.ErrNoEncryptedEntry
		}
		if sig != zipLocalHeaderSig {
			return nil, fingerprint.ErrNoEncryptedEntry
		}

		if _, err := r.U16LE(); err != nil { // version needed
			return nil, ErrMalformedHeader
		}
		flags, err := r.U16LE()
		if err != nil {
			return nil, ErrMalformedHeader
		}
		method, err := r.U16LE()
		if err != nil {
			return nil, ErrMalformedHeader
		}
		modTime, err := r.U16LE()
		if err != nil {
			return nil, ErrMalformedHeader
		}
		if _, err := r.U16LE(); err != nil { // modDate
			return nil, ErrMalformedHeader
		}
		crc32, err := r.U32LE()
		if err != nil {
			return nil, ErrMalformedHeader
		}
		compSize, err := r.U32LE()
		if err != nil {
			return nil, ErrMalformedHeader
		}
		if _, err := r.U32LE(); err != nil { // uncompressed size
			return nil, ErrMalformedHeader
		}
		nameLen, err := r.U16LE()
		if err != nil {
			return nil, ErrMalformedHeader
		}
		extraLen, err := r.U16LE()
		if err != nil {
			return nil, ErrMalformedHeader
		}
		nameBytes, err := r.Bytes(int(nameLen))
		if err != nil {
			return nil, ErrMalformedHeader
		}
		extraBytes, err := r.Bytes(int(extraLen))
		if err != nil {
			return nil, ErrMalformedHeader
		}

		dataStart := r.Pos()
		encrypted := flags&0x1 != 0

		if !encrypted {
			offset = dataStart + int64(compSize)
			continue
		}

		aesStrength, aesRealMethod, isAES := parseAESExtra(extraBytes)
		if isAES {
			return extractWinZipAES(r, dataStart, int64(compSize), string(nameBytes), aesStrength, aesRealMethod)
		}

		header, err := r.Bytes(12)
		if err != nil {
			return nil, ErrMalformedHeader
		}
		info := &HashInfo{
			Variant:     fingerprint.PKZIP,
			EntryName:   string(nameBytes),
			Compression: Compression(method),
			CRC32Hi:     byte(crc32 >> 24),
			TimeHi:      byte(modTime >> 8),
		}
		copy(info.EncryptedHeader[:], header)
		return info, nil
	}
}

// parseAESExtra scans a ZIP extra field block for the WinZip AES marker
// (header ID 0x9901) and returns the strength byte and the real compression
// method it conceals.
//
// The strength byte sits at offset +8 from the marker's own first byte, not
// +4: the field layout is headerID(2) dataSize(2) vendorVersion(2)
// vendorID(2) strength(1) realMethod(2). Reading +4 lands on the vendor
// version, which silently breaks salt sizing for every AES archive.
//
// The scan advances one byte at a time rather than hopping by each block's
// declared dataSize, so a marker that ends up misaligned by a stray byte
// (a short or padded preceding block) is still found instead of being
// jumped over.
func parseAESExtra(extra []byte) (strength int, realMethod uint16, ok bool) {
	for i := 0; i+11 <= len(extra); i++ {
		id := binary.LittleEndian.Uint16(extra[i:])
		if id != aesExtraID {
			continue
		}
		size := binary.LittleEndian.Uint16(extra[i+2:])
		if size < 7 {
			continue
		}
		strengthByte := extra[i+8]
		method := binary.LittleEndian.Uint16(extra[i+9:])
		return int(strengthByte), method, true
	}
	return 0, 0, false
}

func saltSizeForStrength(strength int) int {
	switch strength {
	case 1:
		return 8
	case 2:
		return 12
	case 3:
		return 16
	default:
		return 0
	}
}

// extractWinZipAES reads salt || passwordVerifier || ciphertext || authTag
// from the encrypted payload, clipping the sample used in the emitted hash
// to maxWinZipSample bytes.
func extractWinZipAES(r *breader.Reader, dataStart, dataSize int64, name string, strength int, realMethod uint16) (*HashInfo, error) {
	saltSize := saltSizeForStrength(strength)
	if saltSize == 0 {
		return nil, ErrMalformedHeader
	}
	if dataSize < int64(saltSize+2+10) {
		return nil, ErrMalformedHeader
	}

	if err := r.SeekTo(dataStart); err != nil {
		return nil, ErrMalformedHeader
	}
	salt, err := r.Bytes(saltSize)
	if err != nil {
		return nil, ErrMalformedHeader
	}
	pv, err := r.Bytes(2)
	if err != nil {
		return nil, ErrMalformedHeader
	}

	cipherLen := dataSize - int64(saltSize) - 2 - 10
	if cipherLen < 1 {
		return nil, ErrMalformedHeader
	}
	sampleLen := cipherLen
	if sampleLen > maxWinZipSample {
		sampleLen = maxWinZipSample
	}
	sample, err := r.Bytes(int(sampleLen))
	if err != nil {
		return nil, ErrMalformedHeader
	}

	if err := r.SeekTo(dataStart + cipherLen + int64(saltSize) + 2); err != nil {
		return nil, ErrMalformedHeader
	}
	authTag, err := r.Bytes(10)
	if err != nil {
		return nil, ErrMalformedHeader
	}

	info := &HashInfo{
		Variant:         fingerprint.WinZipAES,
		EntryName:       name,
		Compression:     Compression(realMethod),
		AESStrength:     strength,
		Salt:            salt,
		EncryptedSample: sample,
	}
	copy(info.PasswordVerifier[:], pv)
	copy(info.AuthTag[:], authTag)
	return info, nil
}
