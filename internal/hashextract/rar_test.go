package hashextract

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.rar")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func encodeVarint(x uint64) []byte {
	var out []byte
	for {
		b := byte(x & 0x7f)
		x >>= 7
		if x != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if x == 0 {
			break
		}
	}
	return out
}

func le16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// buildRar3FileHeader constructs one RAR3 file-header block: the 7-byte
// common header followed by the fixed file fields, a name, and (when
// encrypted) a salt and sample block.
func buildRar3FileHeader(name string, flags uint16, salt [8]byte, sample [16]byte, packSize uint32) []byte {
	var body []byte
	body = append(body, le32(packSize)...) // packSize
	body = append(body, le32(0)...)        // unpSize
	body = append(body, 0)                 // hostOS
	body = append(body, le32(0)...)        // fileCRC
	body = append(body, le32(0)...)        // fileTime
	body = append(body, 0)                 // unpVer
	body = append(body, 0)                 // method
	body = append(body, le16(uint16(len(name)))...)
	body = append(body, le32(0)...) // fileAttr
	body = append(body, []byte(name)...)

	if flags&rar3FlagEncrypted != 0 {
		if flags&rar3FlagSaltPresent != 0 {
			body = append(body, salt[:]...)
		}
		body = append(body, sample[:]...)
	}

	headSize := uint16(7 + len(body))
	var header []byte
	header = append(header, le16(0)...) // crc
	header = append(header, rar3FileHeaderType)
	header = append(header, le16(flags)...)
	header = append(header, le16(headSize)...)
	header = append(header, body...)
	return header
}

func TestExtractRAR3EncryptedData(t *testing.T) {
	var salt [8]byte
	copy(salt[:], []byte("SALTSALT"))
	var sample [16]byte
	copy(sample[:], []byte("0123456789ABCDEF"))

	sig := []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00}
	h1 := buildRar3FileHeader("plain.txt", 0, [8]byte{}, [16]byte{}, 0)
	h2 := buildRar3FileHeader("secret.txt", rar3FlagEncrypted|rar3FlagSaltPresent, salt, sample, 0)

	data := append(append(append([]byte{}, sig...), h1...), h2...)
	path := writeTemp(t, data)

	info, err := extractRAR3(path, int64(len(sig)))
	assert.NoError(t, err)
	assert.Equal(t, salt[:], info.Salt)
	assert.Equal(t, sample, info.SampleBlock)
	assert.False(t, info.RAR3HeaderEncrypted)
}

func TestExtractRAR3SkipsUnencryptedThenFindsSecond(t *testing.T) {
	sig := []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00}
	packedBody := []byte("0123456789")
	h1 := buildRar3FileHeader("a.txt", 0, [8]byte{}, [16]byte{}, uint32(len(packedBody)))
	var sample [16]byte
	copy(sample[:], []byte("FEDCBA9876543210"))
	h2 := buildRar3FileHeader("b.txt", rar3FlagEncrypted, [8]byte{}, sample, 0)

	data := append([]byte{}, sig...)
	data = append(data, h1...)
	data = append(data, packedBody...) // pack data sits after HEAD_SIZE, not inside it
	data = append(data, h2...)

	path := writeTemp(t, data)
	info, err := extractRAR3(path, int64(len(sig)))
	assert.NoError(t, err)
	assert.Equal(t, sample, info.SampleBlock)
}

// buildRar5EncryptionRecord constructs a RAR5 header: crc32(4) + vint
// headerSize + vint headerType(4) + vint headerFlags + vint encVersion +
// vint encFlags + vint kdfCount + salt(16) + checkValue(12).
func buildRar5EncryptionRecord(salt [16]byte, checkValue [12]byte, kdfCount uint64) []byte {
	var body []byte
	body = append(body, encodeVarint(4)...) // header type 4
	body = append(body, encodeVarint(0)...) // header flags
	body = append(body, encodeVarint(0)...) // encryption version
	body = append(body, encodeVarint(1)...) // enc flags: check value present
	body = append(body, encodeVarint(kdfCount)...)
	body = append(body, salt[:]...)
	body = append(body, checkValue[:]...)

	headerSize := encodeVarint(uint64(len(body)))
	var header []byte
	header = append(header, le32(0)...) // header CRC
	header = append(header, headerSize...)
	header = append(header, body...)
	return header
}

func TestExtractRAR5EncryptionRecord(t *testing.T) {
	var salt [16]byte
	copy(salt[:], []byte("0123456789ABCDEF"))
	var check [12]byte
	copy(check[:], []byte("CHECKVALUE12"))

	sig := []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x01, 0x00}
	rec := buildRar5EncryptionRecord(salt, check, 15)
	data := append(append([]byte{}, sig...), rec...)
	path := writeTemp(t, data)

	info, err := extractRAR5(path, int64(len(sig)))
	assert.NoError(t, err)
	assert.Equal(t, salt[:], info.Salt)
	assert.Equal(t, check, info.CheckValue)
	assert.Equal(t, 15, info.KDFIterationsLog)
}
