// Package serialize implements the binary (Module, RunResult) codec: a
// compact, explicitly length-prefixed and variant-tagged format designed
// for an exact round trip. encoding/gob was considered and rejected (see
// DESIGN.md): gob's wire format elides a tagged-variant shape for our
// hand-rolled sum types (Operation, Terminal, RunResult), and the `run`
// resumption path needs to read back exactly the variant the compiler
// wrote without guessing from a registered concrete type.
package serialize

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Writer is a thin, error-accumulating wrapper over io.Writer providing the
// handful of primitives every codec in this package builds on.
type Writer struct {
	w   io.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) raw(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

// U8 writes a single byte, used for booleans and small tags.
func (w *Writer) U8(v uint8) {
	w.raw([]byte{v})
}

// Bool writes v as a single 0/1 byte.
func (w *Writer) Bool(v bool) {
	if v {
		w.U8(1)
	} else {
		w.U8(0)
	}
}

// U32 writes v big-endian.
func (w *Writer) U32(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	w.raw(buf[:])
}

// I32 writes v big-endian, used for VarID/BlockID/int fields.
func (w *Writer) I32(v int32) {
	w.U32(uint32(v))
}

// Bytes writes a u32 length prefix followed by b's contents.
func (w *Writer) Bytes(b []byte) {
	w.U32(uint32(len(b)))
	w.raw(b)
}

// Str writes s as a length-prefixed byte blob.
func (w *Writer) Str(s string) {
	w.Bytes([]byte(s))
}

// Reader is Writer's counterpart, threading the first error encountered
// through every subsequent call so callers only need to check it once at
// the end of a decode.
type Reader struct {
	r   io.Reader
	err error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) raw(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		r.fail(err)
		return nil
	}
	return buf
}

func (r *Reader) U8() uint8 {
	b := r.raw(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) Bool() bool {
	return r.U8() != 0
}

func (r *Reader) U32() uint32 {
	b := r.raw(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *Reader) I32() int32 {
	return int32(r.U32())
}

const maxBlobLen = 1 << 30

func (r *Reader) Bytes() []byte {
	n := r.U32()
	if r.err != nil {
		return nil
	}
	if n > maxBlobLen {
		r.fail(fmt.Errorf("serialize: implausible blob length %d", n))
		return nil
	}
	if n == 0 {
		return []byte{}
	}
	return r.raw(int(n))
}

func (r *Reader) Str() string {
	return string(r.Bytes())
}
