package shortvec

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	var buf []byte
	for i := 0; i <= math.MaxUint16; i++ {
		var err error
		buf, err = AppendLen(buf[:0], i)
		require.NoError(t, err)
		require.LessOrEqual(t, len(buf), MaxEncodedSize)

		actual, err := DecodeLen(bytes.NewReader(buf))
		require.NoError(t, err)
		require.Equal(t, i, actual)
	}
}

func TestKnownEncodings(t *testing.T) {
	for val, encoded := range map[int][]byte{
		0x0:    {0x0},
		0x7f:   {0x7f},
		0x80:   {0x80, 0x01},
		0xff:   {0xff, 0x01},
		0x100:  {0x80, 0x02},
		0x7fff: {0xff, 0xff, 0x01},
		0xffff: {0xff, 0xff, 0x03},
	} {
		actual, err := AppendLen(nil, val)
		require.NoError(t, err)
		assert.Equal(t, encoded, actual)
	}
}

func TestInvalid(t *testing.T) {
	_, err := AppendLen(nil, math.MaxUint16+1)
	assert.Equal(t, ErrTooLarge, err)

	_, err = AppendLen(nil, -1)
	assert.Equal(t, ErrTooLarge, err)

	_, err = DecodeLen(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0x01}))
	assert.Error(t, err)

	_, err = DecodeLen(bytes.NewReader([]byte{0xff, 0xff, 0x07}))
	assert.Equal(t, ErrTooLarge, err)

	_, err = DecodeLen(bytes.NewReader([]byte{0x80}))
	assert.Equal(t, io.EOF, err)
}
