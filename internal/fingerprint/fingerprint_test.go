package fingerprint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestFingerprintZIP(t *testing.T) {
	path := writeTemp(t, append(sigZIP, make([]byte, 32)...))
	d, err := Fingerprint(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, PKZIP, d.Variant)
}

func TestFingerprintRAR5(t *testing.T) {
	path := writeTemp(t, append(sigRAR5, make([]byte, 32)...))
	d, err := Fingerprint(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, RAR5, d.Variant)
	assert.Equal(t, int64(8), d.HeaderOffset)
}

func TestFingerprintRAR3(t *testing.T) {
	path := writeTemp(t, append(sigRAR3, make([]byte, 32)...))
	d, err := Fingerprint(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, RAR3, d.Variant)
	assert.Equal(t, int64(7), d.HeaderOffset)
}

func TestFingerprintSevenZip(t *testing.T) {
	path := writeTemp(t, append(sig7z, make([]byte, 32)...))
	d, err := Fingerprint(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, SevenZip, d.Variant)
}

func TestFingerprintTooSmall(t *testing.T) {
	path := writeTemp(t, []byte{0x01, 0x02})
	_, err := Fingerprint(context.Background(), path)
	assert.ErrorIs(t, err, ErrTooSmall)
}

func TestFingerprintNotFound(t *testing.T) {
	_, err := Fingerprint(context.Background(), filepath.Join(t.TempDir(), "missing.bin"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFingerprintUnsupported(t *testing.T) {
	path := writeTemp(t, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	_, err := Fingerprint(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestFingerprintSFXDeepScan(t *testing.T) {
	body := make([]byte, 2048)
	copy(body, sigMZ)
	copy(body[1536:], sigZIP)
	path := writeTemp(t, body)
	d, err := Fingerprint(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, SFXZip, d.Variant)
	assert.Equal(t, int64(1536), d.HeaderOffset)
	assert.Equal(t, path, d.Path)
}

func TestFingerprintCancelled(t *testing.T) {
	body := make([]byte, 1024)
	copy(body, sigMZ)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := writeTemp(t, body)
	_, err := Fingerprint(ctx, path)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestFingerprintWithRetryStopsOnPermanentError(t *testing.T) {
	path := writeTemp(t, []byte{0x01, 0x02})
	_, err := FingerprintWithRetry(context.Background(), path, 3)
	assert.ErrorIs(t, err, ErrTooSmall)
}
