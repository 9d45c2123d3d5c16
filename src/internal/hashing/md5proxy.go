package hashing

import (
	"crypto/md5"
	"encoding/hex"
	"hash"
	"io"
)

type ChecksumProvider interface {
	GetChecksum() (string, error)
}

// ChecksumReaderProxy calculates the MD5 checksum of data as it's read.
type ChecksumReaderProxy struct {
	reader   io.Reader
	checksum hash.Hash
}

func NewMD5ReaderProxy(reader io.Reader) *ChecksumReaderProxy {
	return &ChecksumReaderProxy{
		reader:   reader,
		checksum: md5.New(),
	}
}

func (p *ChecksumReaderProxy) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if n > 0 {
		p.checksum.Write(buf[:n])
	}
	return n, err
}

// GetChecksum returns the MD5 of everything read so far as a hex string.
func (p *ChecksumReaderProxy) GetChecksum() (string, error) {
	return hex.EncodeToString(p.checksum.Sum(nil)), nil
}

// ChecksumWriterProxy calculates the MD5 checksum of data as it's written.
// Bytes the underlying writer rejected are not hashed.
type ChecksumWriterProxy struct {
	writer   io.Writer
	checksum hash.Hash
	written  int64
}

func NewMD5WriterProxy(writer io.Writer) *ChecksumWriterProxy {
	return &ChecksumWriterProxy{
		writer:   writer,
		checksum: md5.New(),
	}
}

func (p *ChecksumWriterProxy) Write(buf []byte) (int, error) {
	n, err := p.writer.Write(buf)
	if n > 0 {
		p.checksum.Write(buf[:n])
		p.written += int64(n)
	}
	return n, err
}

// Written returns the number of bytes accepted by the underlying writer.
func (p *ChecksumWriterProxy) Written() int64 {
	return p.written
}

func (p *ChecksumWriterProxy) GetChecksum() (string, error) {
	return hex.EncodeToString(p.checksum.Sum(nil)), nil
}

// ChecksumOf returns the MD5 of b as a hex string.
func ChecksumOf(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}
