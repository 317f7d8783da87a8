package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/zeebo/blake3"

	"github.com/meshmessaging/usenix23/routing"
)

var errDigestMismatch = errors.New("trace digest mismatch")

// traceFile is a tracer writing to a file and hashing everything written.
type traceFile struct {
	*routing.Tracer
	file   afero.File
	hasher *blake3.Hasher
	closed bool
}

func createTrace(fs afero.Fs, path string, format routing.Format) (*traceFile, error) {
	f, err := fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create trace %s: %w", path, err)
	}
	hasher := blake3.New()
	tracer, err := routing.NewTracer(io.MultiWriter(f, hasher), format)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &traceFile{Tracer: tracer, file: f, hasher: hasher}, nil
}

// Close flushes the tracer and closes the file. Subsequent calls do nothing.
func (t *traceFile) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	return errors.Join(t.Tracer.Close(), t.file.Close())
}

// Digest of the bytes written so far. Complete only after Close.
func (t *traceFile) Digest() string {
	return hex.EncodeToString(t.hasher.Sum(nil))
}

// digestReader hashes everything read through it.
type digestReader struct {
	io.Reader
	hasher *blake3.Hasher
}

func newDigestReader(r io.Reader) *digestReader {
	hasher := blake3.New()
	return &digestReader{Reader: io.TeeReader(r, hasher), hasher: hasher}
}

// verify drains the reader and compares the digest of everything read with expected.
func (d *digestReader) verify(expected string) error {
	if _, err := io.Copy(io.Discard, d.Reader); err != nil {
		return err
	}
	if actual := hex.EncodeToString(d.hasher.Sum(nil)); actual != expected {
		return fmt.Errorf("%w: expected %s, got %s", errDigestMismatch, expected, actual)
	}
	return nil
}
