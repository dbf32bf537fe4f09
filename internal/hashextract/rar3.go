package hashextract

import (
	"archcrack/internal/breader"
	"archcrack/internal/fingerprint"
)

const (
	rar3FileHeaderType  = 0x74
	rar3FlagEncrypted   = 0x0004
	rar3FlagSaltPresent = 0x0100
	rar3FlagEncHeaders  = 0x0200
)

// extractRAR3 walks RAR3 headers starting just after the 7-byte signature.
//
// Each header's HEAD_SIZE field covers only the header itself; for a file
// header, the packed data that follows is a distinct region skipped
// separately by packSize bytes. Treating packSize as part of HEAD_SIZE (or
// vice versa) desynchronizes the walk on any archive with more than one
// entry, which is why the two skips are kept explicit here.
func extractRAR3(path string, headerOffset int64) (*HashInfo, error) {
	r, err := breader.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	offset := headerOffset
	for offset+7 <= r.Size() {
		headerPos := offset
		if err := r.SeekTo(offset); err != nil {
			break
		}
		if _, err := r.U16LE(); err != nil { // header CRC
			break
		}
		headerType, err := r.U8()
		if err != nil {
			break
		}
		flags, err := r.U16LE()
		if err != nil {
			break
		}
		headSize, err := r.U16LE()
		if err != nil {
			break
		}

		var packSize uint32
		if headerType == rar3FileHeaderType {
			info, sz, ferr := tryExtractRAR3FileHeader(r, flags)
			if ferr != nil {
				return nil, ferr
			}
			packSize = sz
			if info != nil {
				return info, nil
			}
		}

		if headSize == 0 {
			break
		}
		offset = headerPos + int64(headSize) + int64(packSize)
	}
	return nil, fingerprint.ErrNoEncryptedEntry
}

// tryExtractRAR3FileHeader reads the fixed file-header fields that follow
// the common 7-byte header, and if the entry is encrypted, the salt and a
// 16-byte sample of its encrypted data. It returns the packed size
// regardless of whether the entry was encrypted, so the caller can always
// advance the walk correctly.
func tryExtractRAR3FileHeader(r *breader.Reader, flags uint16) (*HashInfo, uint32, error) {
	packSize, err := r.U32LE()
	if err != nil {
		return nil, 0, ErrMalformedHeader
	}
	if _, err := r.U32LE(); err != nil { // unpSize
		return nil, 0, ErrMalformedHeader
	}
	if _, err := r.U8(); err != nil { // hostOS
		return nil, 0, ErrMalformedHeader
	}
	fileCRC, err := r.U32LE()
	if err != nil {
		return nil, 0, ErrMalformedHeader
	}
	if _, err := r.U32LE(); err != nil { // fileTime
		return nil, 0, ErrMalformedHeader
	}
	if _, err := r.U8(); err != nil { // unpVer
		return nil, 0, ErrMalformedHeader
	}
	if _, err := r.U8(); err != nil { // method
		return nil, 0, ErrMalformedHeader
	}
	nameLen, err := r.U16LE()
	if err != nil {
		return nil, 0, ErrMalformedHeader
	}
	if _, err := r.U32LE(); err != nil { // fileAttr
		return nil, 0, ErrMalformedHeader
	}
	if _, err := r.Bytes(int(nameLen)); err != nil {
		return nil, 0, ErrMalformedHeader
	}

	if flags&rar3FlagEncrypted == 0 {
		return nil, packSize, nil
	}

	var salt [8]byte
	if flags&rar3FlagSaltPresent != 0 {
		s, err := r.Bytes(8)
		if err != nil {
			return nil, 0, ErrMalformedHeader
		}
		copy(salt[:], s)
	}

	sample, err := r.Bytes(16)
	if err != nil {
		return nil, 0, ErrMalformedHeader
	}

	info := &HashInfo{
		Variant:             fingerprint.RAR3,
		Salt:                salt[:],
		RAR3HeaderEncrypted: flags&rar3FlagEncHeaders != 0,
		RAR3FileCRC:         fileCRC,
	}
	copy(info.SampleBlock[:], sample)
	return info, packSize, nil
}
