package verify

import (
	"bytes"
	"crypto/hmac"

	sha256simd "github.com/minio/sha256-simd"
	"golang.org/x/crypto/pbkdf2"

	"archcrack/internal/hashextract"
)

type rar5Verifier struct {
	salt             []byte
	checkValue       []byte
	kdfIterationsLog int
}

func newRAR5Verifier(info *hashextract.HashInfo) *rar5Verifier {
	return &rar5Verifier{
		salt:             info.Salt,
		checkValue:       append([]byte{}, info.CheckValue[:]...),
		kdfIterationsLog: info.KDFIterationsLog,
	}
}

// deriveRAR5 runs the RAR5 KDF: PBKDF2-HMAC-SHA256 over 2^log rounds to
// derive the encryption key, then one further HMAC round to derive the
// 4-byte password check value, which the container stores repeated three
// times into a 12-byte field.
func deriveRAR5(password string, salt []byte, log int) (key, check []byte) {
	rounds := 1 << uint(log)
	key = pbkdf2.Key([]byte(password), salt, rounds, 32, sha256simd.New)

	mac := hmac.New(sha256simd.New, key)
	mac.Write([]byte{0, 0, 0, 0})
	sum := mac.Sum(nil)

	quarter := sum[:4]
	check = append(append(append([]byte{}, quarter...), quarter...), quarter...)
	return key, check
}

func (v *rar5Verifier) Verify(password string) (bool, error) {
	_, check := deriveRAR5(password, v.salt, v.kdfIterationsLog)
	return bytes.Equal(check, v.checkValue), nil
}
