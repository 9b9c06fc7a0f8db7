package io

import (
	"bytes"
	"io"
)

type (
	File interface {
		Path() string
		WriteTo(io.Writer) (int64, error)
	}

	// RawFile is a file whose content is fully rendered in memory.
	RawFile struct {
		FPath   string
		Content []byte
	}

	// RenderedFile defers rendering the content until the file is written.
	RenderedFile struct {
		FPath  string
		Render func(io.Writer) error
	}
)

func (r *RawFile) Path() string {
	return r.FPath
}

func (r *RawFile) WriteTo(out io.Writer) (int64, error) {
	n, err := out.Write(r.Content)
	return int64(n), err
}

func (r *RenderedFile) Path() string {
	return r.FPath
}

func (r *RenderedFile) WriteTo(out io.Writer) (int64, error) {
	w := &CountingWriter{Delegate: out}
	err := r.Render(w)
	return int64(w.BytesWritten), err
}

// Render renders `f` into memory.
func Render(f File) (*RawFile, error) {
	buf := new(bytes.Buffer)
	if _, err := f.WriteTo(buf); err != nil {
		return nil, err
	}
	return &RawFile{FPath: f.Path(), Content: buf.Bytes()}, nil
}

// CountingWriter counts the bytes written through it to Delegate.
type CountingWriter struct {
	Delegate     io.Writer
	BytesWritten int
}

func (w *CountingWriter) Write(p []byte) (int, error) {
	n, err := w.Delegate.Write(p)
	w.BytesWritten += n
	return n, err
}
