package solana

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ybbus/jsonrpc"
)

func decodeRaw(t *testing.T, s string) interface{} {
	var raw interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func TestParseTransactionError(t *testing.T) {
	e, err := ParseTransactionError(decodeRaw(t, `{"InstructionError":[2,{"Custom":3}]}`))
	require.NoError(t, err)
	assert.Equal(t, TransactionErrorInstructionError, e.ErrorKey())
	require.NotNil(t, e.InstructionError())
	assert.Equal(t, 2, e.InstructionError().Index)
	assert.Equal(t, InstructionErrorCustom, e.InstructionError().ErrorKey())
	require.NotNil(t, e.InstructionError().CustomError())
	assert.Equal(t, CustomError(3), *e.InstructionError().CustomError())

	e, err = ParseTransactionError(decodeRaw(t, `{"InstructionError":[0,"InvalidArgument"]}`))
	require.NoError(t, err)
	require.NotNil(t, e.InstructionError())
	assert.Equal(t, 0, e.InstructionError().Index)
	assert.Equal(t, InstructionErrorInvalidArgument, e.InstructionError().ErrorKey())
	assert.Nil(t, e.InstructionError().CustomError())

	e, err = ParseTransactionError(decodeRaw(t, `"DuplicateSignature"`))
	require.NoError(t, err)
	assert.Equal(t, TransactionErrorDuplicateSignature, e.ErrorKey())
	assert.Nil(t, e.InstructionError())

	e, err = ParseTransactionError(nil)
	assert.NoError(t, err)
	assert.Nil(t, e)

	e, err = ParseTransactionError(decodeRaw(t, `{"A":1,"B":2}`))
	assert.Error(t, err)
	require.NotNil(t, e)
	assert.Contains(t, e.Error(), "unhandled")

	e, err = ParseTransactionError(decodeRaw(t, `{"InstructionError":[0]}`))
	assert.Error(t, err)
	require.NotNil(t, e)
}

func TestParseRPCError(t *testing.T) {
	e, err := ParseRPCError(nil)
	assert.NoError(t, err)
	assert.Nil(t, e)

	_, err = ParseRPCError(&jsonrpc.RPCError{Code: -32002, Data: "oops"})
	assert.Error(t, err)

	e, err = ParseRPCError(&jsonrpc.RPCError{Code: -32002, Data: map[string]interface{}{"err": nil}})
	assert.NoError(t, err)
	assert.Nil(t, e)

	e, err = ParseRPCError(&jsonrpc.RPCError{
		Code: -32002,
		Data: decodeRaw(t, `{"err":"BlockhashNotFound","logs":[]}`),
	})
	require.NoError(t, err)
	assert.Equal(t, TransactionErrorBlockhashNotFound, e.ErrorKey())
}

func TestTransactionError_Raw(t *testing.T) {
	e := NewTransactionError(TransactionErrorDuplicateSignature)
	assert.Equal(t, decodeRaw(t, `"DuplicateSignature"`), e.raw)

	for _, tc := range []struct {
		err      *InstructionError
		expected string
	}{
		{&InstructionError{Index: 0, Err: errors.New(string(InstructionErrorInvalidArgument))}, `{"InstructionError":[0,"InvalidArgument"]}`},
		{&InstructionError{Index: 2, Err: CustomError(3)}, `{"InstructionError":[2,{"Custom":3}]}`},
	} {
		e, err := TransactionErrorFromInstructionError(tc.err)
		require.NoError(t, err)
		assert.Equal(t, decodeRaw(t, tc.expected), e.raw)

		encoded, err := e.JSONString()
		require.NoError(t, err)
		assert.JSONEq(t, tc.expected, encoded)

		// Parsing the rendered form yields the same instruction error
		parsed, err := ParseTransactionError(decodeRaw(t, encoded))
		require.NoError(t, err)
		assert.Equal(t, tc.err.ErrorKey(), parsed.InstructionError().ErrorKey())
		assert.Equal(t, tc.err.Index, parsed.InstructionError().Index)
	}
}

func TestParseJSONNumber(t *testing.T) {
	for _, v := range []interface{}{"1", 1.0, json.Number("1")} {
		n, err := parseJSONNumber(v)
		assert.NoError(t, err)
		assert.Equal(t, 1, n)
	}

	for _, v := range []interface{}{"one", json.Number("1.5"), true} {
		_, err := parseJSONNumber(v)
		assert.Error(t, err)
	}
}

func TestTransactionError_Unwrap(t *testing.T) {
	txErr, err := TransactionErrorFromInstructionError(&InstructionError{Index: 1, Err: CustomError(0)})
	require.NoError(t, err)

	var asErr error = txErr
	assert.True(t, errors.Is(asErr, CustomError(0)))
	assert.False(t, errors.Is(asErr, CustomError(1)))

	var instructionErr *InstructionError
	require.True(t, errors.As(asErr, &instructionErr))
	assert.Equal(t, 1, instructionErr.Index)

	assert.False(t, errors.Is(NewTransactionError(TransactionErrorBlockhashNotFound), CustomError(0)))
}
