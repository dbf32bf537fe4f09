package hashextract

import (
	"archcrack/internal/breader"
	"archcrack/internal/fingerprint"
)

const rar5EncryptionHeaderType = 4

// extractRAR5 walks RAR5 headers starting just after the 8-byte signature,
// looking for the encryption record (header type 4).
func extractRAR5(path string, headerOffset int64) (*HashInfo, error) {
	r, err := breader.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	offset := headerOffset
	for offset < r.Size() {
		if err := r.SeekTo(offset); err != nil {
			break
		}
		if _, err := r.U32LE(); err != nil { // header CRC
			break
		}
		headerSize, err := r.Vint()
		if err != nil {
			break
		}
		headerStart := r.Pos()
		headerType, err := r.Vint()
		if err != nil {
			break
		}

		if headerType == rar5EncryptionHeaderType {
			if _, err := r.Vint(); err != nil { // header flags
				break
			}
			if _, err := r.Vint(); err != nil { // encryption version
				break
			}
			encFlags, err := r.Vint()
			if err != nil {
				break
			}
			kdfCount, err := r.Vint()
			if err != nil {
				break
			}
			salt, err := r.Bytes(16)
			if err != nil {
				return nil, ErrMalformedHeader
			}
			var checkValue [12]byte
			if encFlags&0x1 != 0 { // check value present
				cv, err := r.Bytes(12)
				if err != nil {
					return nil, ErrMalformedHeader
				}
				copy(checkValue[:], cv)
			}
			info := &HashInfo{
				Variant:          fingerprint.RAR5,
				Salt:             salt,
				KDFIterationsLog: int(kdfCount),
				CheckValue:       checkValue,
			}
			return info, nil
		}

		offset = headerStart + int64(headerSize)
		if headerSize == 0 {
			break
		}
	}
	return nil, fingerprint.ErrNoEncryptedEntry
}
