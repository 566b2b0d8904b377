package echo

import (
	"encoding/binary"

	"github.com/near/borsh-go"
	"github.com/pkg/errors"
)

const (
	DefaultBufferSize = 32

	bufferLengthPrefixSize = 4
	bufferHeaderSize       = (1 + // bump
		8) // buffer_seed or price
)

// MaxEchoMessageSize is the longest message a plain buffer of bufferSize bytes
// stores. The program silently truncates anything longer.
func MaxEchoMessageSize(bufferSize uint64) int {
	return max(int(bufferSize)-bufferLengthPrefixSize, 0)
}

// MaxPrefixedMessageSize is the longest message an authorized or vending
// machine buffer of bufferSize bytes stores after its bump and seed header.
func MaxPrefixedMessageSize(bufferSize uint64) int {
	return max(MaxEchoMessageSize(bufferSize)-bufferHeaderSize, 0)
}

// ExpectedEchoMessage is what the program stores for message in a plain buffer.
func ExpectedEchoMessage(message []byte, bufferSize uint64) []byte {
	return truncate(message, MaxEchoMessageSize(bufferSize))
}

// ExpectedPrefixedMessage is what the program stores for message in an
// authorized or vending machine buffer.
func ExpectedPrefixedMessage(message []byte, bufferSize uint64) []byte {
	return truncate(message, MaxPrefixedMessageSize(bufferSize))
}

// EchoBuffer is the state of a plain echo account: a borsh Vec<u8>.
type EchoBuffer struct {
	Message []byte
}

func (obj *EchoBuffer) Unmarshal(data []byte) error {
	vec, err := unmarshalVec(data)
	if err != nil {
		return err
	}

	obj.Message = vec
	return nil
}

// Marshal writes the buffer the way the program does for a buffer of
// bufferSize bytes, truncating the message to fit.
func (obj *EchoBuffer) Marshal(bufferSize uint64) ([]byte, error) {
	return marshalVec(obj.Message, bufferSize)
}

// PrefixedBuffer is the state of an authorized or vending machine account:
// a borsh Vec<u8> holding the bump, the 8-byte seed or price, then the
// message.
type PrefixedBuffer struct {
	Bump    uint8
	Value   uint64
	Message []byte
}

func (obj *PrefixedBuffer) Unmarshal(data []byte) error {
	vec, err := unmarshalVec(data)
	if err != nil {
		return err
	}

	// The program serializes only seven bytes of the value at initialization
	// and reads all eight back from the raw account, so the header is parsed
	// from the account bytes rather than the vec.
	if len(vec) < bufferHeaderSize-1 || len(data) < bufferLengthPrefixSize+bufferHeaderSize {
		return errors.Wrap(ErrInvalidAccountData, "buffer header missing")
	}

	obj.Bump = data[bufferLengthPrefixSize]
	obj.Value = binary.LittleEndian.Uint64(data[bufferLengthPrefixSize+1:])
	obj.Message = nil
	if len(vec) > bufferHeaderSize {
		obj.Message = vec[bufferHeaderSize:]
	}
	return nil
}

// Header returns the bytes the program carries over on every write.
func (obj *PrefixedBuffer) Header() []byte {
	header := make([]byte, bufferHeaderSize)
	header[0] = obj.Bump
	binary.LittleEndian.PutUint64(header[1:], obj.Value)
	return header
}

// Marshal writes the buffer the way the program does after a write, for a
// buffer of bufferSize bytes.
func (obj *PrefixedBuffer) Marshal(bufferSize uint64) ([]byte, error) {
	return marshalVec(append(obj.Header(), obj.Message...), bufferSize)
}

// InitialPrefixedBuffer is the account state right after initialization:
// the bump and the low seven bytes of value.
func InitialPrefixedBuffer(bump uint8, value uint64, bufferSize uint64) ([]byte, error) {
	vec := make([]byte, bufferHeaderSize-1)
	vec[0] = bump
	copy(vec[1:], uint64ToBytes(value)[:bufferHeaderSize-2])
	return marshalVec(vec, bufferSize)
}

// AuthorizedBuffer is the state of an authorized echo account.
type AuthorizedBuffer struct {
	Bump       uint8
	BufferSeed uint64
	Message    []byte
}

func (obj *AuthorizedBuffer) Unmarshal(data []byte) error {
	var prefixed PrefixedBuffer
	if err := prefixed.Unmarshal(data); err != nil {
		return err
	}

	obj.Bump = prefixed.Bump
	obj.BufferSeed = prefixed.Value
	obj.Message = prefixed.Message
	return nil
}

// VendingMachineBuffer is the state of a vending machine echo account.
type VendingMachineBuffer struct {
	Bump    uint8
	Price   uint64
	Message []byte
}

func (obj *VendingMachineBuffer) Unmarshal(data []byte) error {
	var prefixed PrefixedBuffer
	if err := prefixed.Unmarshal(data); err != nil {
		return err
	}

	obj.Bump = prefixed.Bump
	obj.Price = prefixed.Value
	obj.Message = prefixed.Message
	return nil
}

func unmarshalVec(data []byte) (vec []byte, err error) {
	if len(data) < bufferLengthPrefixSize {
		return nil, errors.Wrap(ErrInvalidAccountData, "buffer too small")
	}

	length := binary.LittleEndian.Uint32(data)
	if uint64(length) > uint64(len(data)-bufferLengthPrefixSize) {
		return nil, errors.Wrapf(ErrInvalidAccountData, "declared length %d exceeds buffer", length)
	}

	defer func() {
		if r := recover(); r != nil {
			vec = nil
			err = errors.Wrapf(ErrInvalidAccountData, "borsh decode panic: %v", r)
		}
	}()

	if err := borsh.Deserialize(&vec, data[:bufferLengthPrefixSize+int(length)]); err != nil {
		return nil, errors.Wrap(ErrInvalidAccountData, err.Error())
	}
	if len(vec) == 0 {
		return nil, nil
	}
	return vec, nil
}

func marshalVec(vec []byte, bufferSize uint64) ([]byte, error) {
	if bufferSize < bufferLengthPrefixSize {
		return nil, errors.Wrapf(ErrInvalidAccountData, "buffer size %d too small", bufferSize)
	}

	encoded, err := borsh.Serialize(truncate(vec, MaxEchoMessageSize(bufferSize)))
	if err != nil {
		return nil, errors.Wrap(err, "error serializing buffer")
	}

	data := make([]byte, bufferSize)
	copy(data, encoded)
	return data, nil
}
