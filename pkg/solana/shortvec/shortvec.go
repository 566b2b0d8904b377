// Package shortvec implements the compact-u16 length prefix used in the
// Solana wire format: seven bits per byte, least significant group first,
// with the high bit set on every byte but the last.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// MaxEncodedSize is the longest valid encoding, covering math.MaxUint16.
const MaxEncodedSize = 3

var ErrTooLarge = errors.Errorf("length exceeds %d", math.MaxUint16)

// AppendLen appends the encoding of n to dst.
func AppendLen(dst []byte, n int) ([]byte, error) {
	if n < 0 || n > math.MaxUint16 {
		return dst, ErrTooLarge
	}

	for n >= 0x80 {
		dst = append(dst, byte(n&0x7f)|0x80)
		n >>= 7
	}
	return append(dst, byte(n)), nil
}

// DecodeLen reads one encoded length from r.
func DecodeLen(r io.ByteReader) (int, error) {
	var n int
	for i := 0; i < MaxEncodedSize; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		n |= int(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			if n > math.MaxUint16 {
				return 0, ErrTooLarge
			}
			return n, nil
		}
	}
	return 0, errors.Errorf("encoding longer than %d bytes", MaxEncodedSize)
}
