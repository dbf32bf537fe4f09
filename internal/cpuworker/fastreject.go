package cpuworker

import (
	"crypto/sha1"
	"hash/crc32"

	"golang.org/x/crypto/pbkdf2"

	"archcrack/internal/fingerprint"
	"archcrack/internal/hashextract"
)

// zipCryptoUpdateKeys advances the three ZipCrypto subkeys by one input
// byte, the same CRC32-table-driven update used by the format's stream
// cipher in both directions.
func zipCryptoUpdateKeys(keys *[3]uint32, b byte) {
	keys[0] = crc32.Update(keys[0], crc32.IEEETable, []byte{b})
	keys[1] += keys[0] & 0xff
	keys[1] = keys[1]*134775813 + 1
	keys[2] = crc32.Update(keys[2], crc32.IEEETable, []byte{byte(keys[1] >> 24)})
}

func zipCryptoInitKeys(password string) [3]uint32 {
	keys := [3]uint32{0x12345678, 0x23456789, 0x34567890}
	for i := 0; i < len(password); i++ {
		zipCryptoUpdateKeys(&keys, password[i])
	}
	return keys
}

func zipCryptoDecryptByte(keys *[3]uint32) byte {
	temp := uint16(keys[2]) | 2
	return byte((uint32(temp) * (uint32(temp) ^ 1)) >> 8)
}

// fastRejectPKZIP decrypts the 12-byte ZipCrypto header and compares the
// final decrypted byte against the stored time-high check byte (the
// standard ZipCrypto password-check convention). A pass here has an
// expected false-positive rate around 1/256 and must still go through the
// authoritative Verifier.
func fastRejectPKZIP(info *hashextract.HashInfo, password string) bool {
	keys := zipCryptoInitKeys(password)
	var lastPlain byte
	for _, c := range info.EncryptedHeader {
		plain := c ^ zipCryptoDecryptByte(&keys)
		zipCryptoUpdateKeys(&keys, plain)
		lastPlain = plain
	}
	return lastPlain == info.TimeHi
}

// fastRejectWinZipAES derives the PBKDF2-HMAC-SHA1 key material and compares
// the final two bytes against the stored password verifier.
func fastRejectWinZipAES(info *hashextract.HashInfo, password string) bool {
	keyBytes := aesKeyBytesForStrength(info.AESStrength)
	if keyBytes == 0 {
		return false
	}
	dkLen := 2*keyBytes + 2
	derived := pbkdf2.Key([]byte(password), info.Salt, 1000, dkLen, sha1.New)
	verifier := derived[dkLen-2:]
	return verifier[0] == info.PasswordVerifier[0] && verifier[1] == info.PasswordVerifier[1]
}

func aesKeyBytesForStrength(strength int) int {
	switch strength {
	case 1:
		return 16
	case 2:
		return 24
	case 3:
		return 32
	default:
		return 0
	}
}

// fastReject returns true when password survives the cheap rejection test
// for info's variant and should be escalated to the authoritative verifier.
// RAR3 and RAR5 have no cheap rejection path — every candidate is a
// "survivor" there, batched only to amortize allocation, per variant design.
func fastReject(info *hashextract.HashInfo, password string) bool {
	switch info.Variant {
	case fingerprint.PKZIP:
		return fastRejectPKZIP(info, password)
	case fingerprint.WinZipAES:
		return fastRejectWinZipAES(info, password)
	default:
		return true
	}
}
