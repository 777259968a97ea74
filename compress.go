// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

import "io"

// CompressOptions configures Compress and NewWriter. opts may be nil,
// equivalent to &CompressOptions{Level: 0} (resolved to level 3, §3).
type CompressOptions struct {
	// Level selects the speed/ratio point on the level table (§3). Negative
	// values request the fast "acceleration" row; 0 resolves to level 3.
	Level int
	// Dict attaches a digested dictionary (§4.9); nil for none.
	Dict *CDict
	// Checksum appends an xxhash64 content checksum trailer (§4.8).
	Checksum bool
	// Concurrency, when > 1, compresses block-sized chunks across a worker
	// pool instead of the single-threaded path (§5). 0 or 1 means
	// single-threaded.
	Concurrency int
}

func (o *CompressOptions) level() int {
	if o == nil {
		return 0
	}
	return o.Level
}

func (o *CompressOptions) dict() *CDict {
	if o == nil {
		return nil
	}
	return o.Dict
}

func (o *CompressOptions) checksum() bool {
	return o != nil && o.Checksum
}

func (o *CompressOptions) concurrency() int {
	if o == nil {
		return 1
	}
	return o.Concurrency
}

// Compress compresses the whole of src in one call. opts may be nil. When
// opts.Concurrency is greater than 1, src is split across a worker pool
// (§5) at the cost of some ratio from the job-boundary effect documented on
// compressConcurrent.
func Compress(src []byte, opts *CompressOptions) ([]byte, error) {
	ctx := NewCCtx(opts.level(), uint64(len(src)), opts.dict())
	ctx.checksum = opts.checksum()
	if n := opts.concurrency(); n > 1 {
		return ctx.compressConcurrent(src, n), nil
	}
	return ctx.compressOneShot(src), nil
}

// Writer streams compressed output to an underlying io.Writer, driving a
// CStream one block at a time (§4.10). The zero value is not usable; build
// one with NewWriter.
type Writer struct {
	dst io.Writer
	cs  *CStream
	buf []byte
	err error
}

// NewWriter returns a Writer that frames and compresses everything written
// to it and forwards the compressed bytes to dst. opts may be nil. Callers
// must call Close to flush the final block and checksum trailer.
func NewWriter(dst io.Writer, opts *CompressOptions) *Writer {
	return &Writer{
		dst: dst,
		cs:  NewCStream(opts.level(), 0, opts.dict(), opts.checksum()),
		buf: make([]byte, 64<<10),
	}
}

// Write compresses p (buffering internally as needed) and forwards any
// completed output to the underlying writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	in := &inBuffer{src: p}
	for in.pos < len(in.src) {
		out := &outBuffer{dst: w.buf}
		if _, err := w.cs.compressStream2(out, in, directiveContinue); err != nil {
			w.err = err
			return in.pos, err
		}
		if out.pos > 0 {
			if _, err := w.dst.Write(w.buf[:out.pos]); err != nil {
				w.err = err
				return in.pos, err
			}
		}
		if out.pos == 0 && in.pos < len(in.src) {
			// Stage made no output progress: the in-buffer absorbed bytes
			// without yet needing a flush. Loop again only if it actually
			// consumed something, to avoid spinning.
			if in.pos == 0 {
				break
			}
		}
	}
	return in.pos, nil
}

// Flush forces every byte written so far into at least one block, without
// closing the frame.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	in := &inBuffer{}
	for {
		out := &outBuffer{dst: w.buf}
		hint, err := w.cs.compressStream2(out, in, directiveFlush)
		if err != nil {
			w.err = err
			return err
		}
		if out.pos > 0 {
			if _, err := w.dst.Write(w.buf[:out.pos]); err != nil {
				w.err = err
				return err
			}
		}
		if hint == 0 || out.pos == 0 {
			return nil
		}
	}
}

// Close flushes the final block, appends the checksum trailer if enabled,
// and closes the frame. The Writer must not be used afterward.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	in := &inBuffer{}
	for {
		out := &outBuffer{dst: w.buf}
		hint, err := w.cs.compressStream2(out, in, directiveEnd)
		if err != nil {
			w.err = err
			return err
		}
		if out.pos > 0 {
			if _, err := w.dst.Write(w.buf[:out.pos]); err != nil {
				w.err = err
				return err
			}
		}
		if hint == 0 && w.cs.stage == stageCreated {
			return nil
		}
		if out.pos == 0 && hint == 0 {
			return nil
		}
	}
}

// Reader decompresses a single frame read from an underlying io.Reader. It
// buffers the whole frame before decoding rather than decoding block by
// block as bytes arrive.
type Reader struct {
	r    io.Reader
	dict *CDict

	decoded []byte
	pos     int
	started bool
	err     error
}

// NewReader returns a Reader that decompresses everything read from r.
// opts may be nil.
func NewReader(r io.Reader, opts *DecompressOptions) *Reader {
	var dict *CDict
	if opts != nil {
		dict = opts.Dict
	}
	return &Reader{r: r, dict: dict}
}

func (r *Reader) fill() error {
	src, err := io.ReadAll(r.r)
	if err != nil {
		return err
	}
	out, derr := NewDCtx(r.dict).DecompressFrame(src)
	if derr != nil {
		return derr
	}
	r.decoded = out
	return nil
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if !r.started {
		r.started = true
		if err := r.fill(); err != nil {
			r.err = err
			return 0, err
		}
	}
	if r.pos >= len(r.decoded) {
		return 0, io.EOF
	}
	n := copy(p, r.decoded[r.pos:])
	r.pos += n
	return n, nil
}
