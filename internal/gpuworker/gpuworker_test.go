package gpuworker

import (
	"os"
	"path/filepath"
	"testing"

	"archcrack/internal/phaseplan"

	"github.com/stretchr/testify/assert"
)

func TestBuildArgsSingleToken(t *testing.T) {
	cfg := Config{BinaryPath: "cracker", HashFile: "hash.txt", HashMode: 13000, OutFile: "out.txt"}
	phase := phaseplan.Phase{Mask: "?d?d?d?d", MinLen: 4, MaxLen: 4}
	args := buildArgs(cfg, phase, 4, 4)

	assert.Contains(t, args, "-m")
	assert.Contains(t, args, "13000")
	assert.Contains(t, args, "--potfile-disable")
	assert.Contains(t, args, "hash.txt")
	assert.Contains(t, args, "?d?d?d?d")
	assert.NotContains(t, args, "-1")
}

func TestBuildArgsCustomCharset(t *testing.T) {
	cfg := Config{BinaryPath: "cracker", HashFile: "hash.txt", HashMode: 13000, OutFile: "out.txt"}
	phase := phaseplan.Phase{Mask: "?1?1", Charset: "?d?l", MinLen: 2, MaxLen: 2}
	args := buildArgs(cfg, phase, 2, 2)

	assert.Contains(t, args, "-1")
	assert.Contains(t, args, "?d?l")
	assert.NotContains(t, args, "-2")
	assert.NotContains(t, args, "?l")
}

func TestParseLineProgress(t *testing.T) {
	ev, ok := parseLine("Progress.........: 12345/99999999 (0.01%)")
	assert.True(t, ok)
	assert.Equal(t, int64(12345), ev.ProgressDone)
	assert.Equal(t, int64(99999999), ev.ProgressTotal)
}

func TestParseLineSpeed(t *testing.T) {
	ev, ok := parseLine("Speed.#1.........:  1337.2 MH/s (9.51ms)")
	assert.True(t, ok)
	assert.InDelta(t, 1337.2e6, ev.SpeedHashesPerSec, 1)
}

func TestParseLineTemp(t *testing.T) {
	ev, ok := parseLine("Hardware.Mon.#1..: Temp: 62c Util: 99%")
	assert.True(t, ok)
	assert.Equal(t, 62, ev.TempCelsius)
}

func TestParseLineExhausted(t *testing.T) {
	ev, ok := parseLine("Status...........: Exhausted")
	assert.True(t, ok)
	assert.True(t, ev.Exhausted)
}

func TestParseLineIrrelevant(t *testing.T) {
	_, ok := parseLine("Session..........: hashcat")
	assert.False(t, ok)
}

func TestOutfileHasHit(t *testing.T) {
	assert.False(t, outfileHasHit(""))
	assert.False(t, outfileHasHit(filepath.Join(t.TempDir(), "missing.txt")))

	empty := filepath.Join(t.TempDir(), "empty.txt")
	assert.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o644))
	assert.False(t, outfileHasHit(empty))

	hit := filepath.Join(t.TempDir(), "hit.txt")
	assert.NoError(t, os.WriteFile(hit, []byte("$rar5$16$aa:bb$15$cc:dd$8$15:ee:pass\n"), 0o644))
	assert.True(t, outfileHasHit(hit))
}

func TestReadOutfileUsesLastColon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	err := os.WriteFile(path, []byte("$rar5$16$abcd:ef01$15$aa:bb$8$15:s3cr3t:pass\n"), 0o644)
	assert.NoError(t, err)

	pw, err := ReadOutfile(path)
	assert.NoError(t, err)
	assert.Equal(t, "pass", pw)
}
