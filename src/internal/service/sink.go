package service

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/download"
)

// Sink is the caller's output channel for Read.
type Sink interface {
	// Headless reports a non-interactive context that only wants the artifact path.
	Headless() bool
	NoContent() error
	Path(path string) error
	Inline(content []byte) error
	Download(resp *download.Response) error
}

// WriterSink reports to a text stream, as the command line does.
// It is always headless: the artifact path is printed instead of the content.
type WriterSink struct {
	out         io.Writer
	interactive bool
}

// NewWriterSink creates a sink writing to out. Path output is decorated only
// when out is a terminal, so piped output stays machine-readable.
func NewWriterSink(out io.Writer) *WriterSink {
	interactive := false
	if f, ok := out.(*os.File); ok {
		fd := f.Fd()
		interactive = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	return &WriterSink{out: out, interactive: interactive}
}

func (s *WriterSink) Headless() bool { return true }

func (s *WriterSink) NoContent() error {
	_, err := fmt.Fprintln(s.out, NoContentMessage)
	return err
}

func (s *WriterSink) Path(path string) error {
	if s.interactive {
		_, err := fmt.Fprintf(s.out, "Output path: %s\n", path)
		return err
	}
	_, err := fmt.Fprintln(s.out, path)
	return err
}

func (s *WriterSink) Inline(content []byte) error {
	_, err := s.out.Write(content)
	return err
}

// Download has no meaning on a text stream; the path is reported instead.
func (s *WriterSink) Download(resp *download.Response) error {
	return s.Path(resp.Path)
}
