// Package binary reads and writes the fixed layout little endian account
// state used by native Solana programs.
package binary

import (
	"crypto/ed25519"
	"encoding/binary"
)

// Writer fills a fixed size buffer sequentially. Writes past the end of the
// buffer panic, so the buffer must be sized for the full layout.
type Writer struct {
	buf    []byte
	offset int
}

func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, size)}
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Key(key ed25519.PublicKey) {
	copy(w.buf[w.offset:w.offset+ed25519.PublicKeySize], key)
	w.offset += ed25519.PublicKeySize
}

// OptionalKey writes a COption<Pubkey>: a flag of flagSize bytes, followed by
// the key or zeros.
func (w *Writer) OptionalKey(key ed25519.PublicKey, flagSize int) {
	if len(key) > 0 {
		w.buf[w.offset] = 1
	}
	w.offset += flagSize
	w.Key(key)
}

func (w *Writer) Uint64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[w.offset:], v)
	w.offset += 8
}

func (w *Writer) OptionalUint64(v *uint64, flagSize int) {
	if v == nil {
		w.offset += flagSize + 8
		return
	}
	w.buf[w.offset] = 1
	w.offset += flagSize
	w.Uint64(*v)
}

func (w *Writer) Uint8(v uint8) {
	w.buf[w.offset] = v
	w.offset++
}

func (w *Writer) Bool(v bool) {
	if v {
		w.Uint8(1)
	} else {
		w.Uint8(0)
	}
}

// Reader consumes a buffer written with the same layout as a Writer. Callers
// check the buffer length before reading.
type Reader struct {
	buf    []byte
	offset int
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

func (r *Reader) Key() ed25519.PublicKey {
	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(key, r.buf[r.offset:])
	r.offset += ed25519.PublicKeySize
	return key
}

// OptionalKey returns nil when the option flag is unset.
func (r *Reader) OptionalKey(flagSize int) ed25519.PublicKey {
	set := r.buf[r.offset] == 1
	r.offset += flagSize
	key := r.Key()
	if !set {
		return nil
	}
	return key
}

func (r *Reader) Uint64() uint64 {
	v := binary.LittleEndian.Uint64(r.buf[r.offset:])
	r.offset += 8
	return v
}

func (r *Reader) OptionalUint64(flagSize int) *uint64 {
	set := r.buf[r.offset] == 1
	r.offset += flagSize
	v := r.Uint64()
	if !set {
		return nil
	}
	return &v
}

func (r *Reader) Uint8() uint8 {
	v := r.buf[r.offset]
	r.offset++
	return v
}

func (r *Reader) Bool() bool {
	return r.Uint8() == 1
}
