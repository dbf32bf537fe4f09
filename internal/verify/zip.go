package verify

import (
	"io"

	"archcrack/internal/hashextract"

	yzip "github.com/yeka/zip"
)

// zipVerifier re-opens the real archive through yeka/zip per candidate,
// mirroring the fresh-reader-per-attempt pattern the ZipCrack examples use
// for thread safety: *yzip.ReadCloser is not safe to share a password
// across concurrent attempts, so each Verify call gets its own handle.
type zipVerifier struct {
	archivePath string
	entryName   string
}

func newZipVerifier(archivePath string, info *hashextract.HashInfo) (*zipVerifier, error) {
	return &zipVerifier{archivePath: archivePath, entryName: info.EntryName}, nil
}

func (v *zipVerifier) Verify(password string) (bool, error) {
	rc, err := yzip.OpenReader(v.archivePath)
	if err != nil {
		return false, err
	}
	defer rc.Close()

	var target *yzip.File
	for _, f := range rc.File {
		if f.Name == v.entryName {
			target = f
			break
		}
	}
	if target == nil {
		return false, nil
	}

	target.SetPassword(password)
	r, err := target.Open()
	if err != nil {
		return false, nil
	}
	defer r.Close()

	_, err = io.Copy(io.Discard, r)
	if err != nil {
		return false, nil
	}
	return true, nil
}
