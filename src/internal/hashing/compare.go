package hashing

import (
	"errors"
	"io"
	"os"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/utils"
)

// FileChecksum returns the MD5 of the content at filePath.
func FileChecksum(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer utils.CloseOrWarn(f)

	proxy := NewMD5ReaderProxy(f)
	if _, err := io.Copy(io.Discard, proxy); err != nil {
		return "", err
	}
	return proxy.GetChecksum()
}

// IsFileChanged reports whether the content at filePath differs from the
// checksum provided. A missing file counts as changed.
func IsFileChanged(checksumProvider ChecksumProvider, filePath string) (bool, error) {
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return true, nil
	}

	want, err := checksumProvider.GetChecksum()
	if err != nil {
		return false, err
	}

	got, err := FileChecksum(filePath)
	if err != nil {
		return false, err
	}
	return got != want, nil
}

// StaticChecksum adapts a precomputed checksum to ChecksumProvider.
type StaticChecksum string

func (s StaticChecksum) GetChecksum() (string, error) {
	return string(s), nil
}
