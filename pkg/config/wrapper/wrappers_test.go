package wrapper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/echo-client/pkg/config"
	"github.com/code-payments/echo-client/pkg/config/memory"
)

type wrapperTestCase[T any] struct {
	defaultValue  T
	overrideValue T
	encoded       []byte // decodes to overrideValue
	invalid       []byte // nil when every byte sequence converts
	unsupported   interface{}
}

func runWrapperTest[T any](t *testing.T, newWrapper func(config.Config) config.Value[T], tc wrapperTestCase[T]) {
	ctx := context.Background()
	mock := memory.NewConfig(nil)
	wrapper := newWrapper(mock)

	assertValue := func(expected T, expectErr bool) {
		val, err := wrapper.GetSafe(ctx)
		if expectErr {
			require.Error(t, err)
		} else {
			require.NoError(t, err)
		}
		assert.Equal(t, expected, val)
		assert.Equal(t, expected, wrapper.Get(ctx))
	}

	assertValue(tc.defaultValue, false)

	mock.SetValue(tc.overrideValue)
	assertValue(tc.overrideValue, false)

	// The last observed value survives a failing source
	mock.InduceErrors()
	assertValue(tc.overrideValue, true)

	mock.StopInducingErrors()
	mock.ClearValue()
	assertValue(tc.defaultValue, false)

	mock.SetValue(tc.encoded)
	assertValue(tc.overrideValue, false)

	if tc.invalid != nil {
		mock.SetValue(tc.invalid)
		assertValue(tc.overrideValue, true)
	}

	mock.SetValue(tc.unsupported)
	_, err := wrapper.GetSafe(ctx)
	assert.Equal(t, ErrUnsuportedConversion, err)
	assert.Equal(t, tc.overrideValue, wrapper.Get(ctx))

	wrapper.Shutdown()
	_, err = wrapper.GetSafe(ctx)
	assert.Equal(t, config.ErrShutdown, err)
}

func TestBoolConfig(t *testing.T) {
	runWrapperTest(t, func(c config.Config) config.Value[bool] {
		return NewBoolConfig(c, true)
	}, wrapperTestCase[bool]{
		defaultValue:  true,
		overrideValue: false,
		encoded:       []byte("false"),
		invalid:       []byte("cannot convert"),
		unsupported:   "false",
	})
}

func TestUint64Config(t *testing.T) {
	runWrapperTest(t, func(c config.Config) config.Value[uint64] {
		return NewUint64Config(c, 5000)
	}, wrapperTestCase[uint64]{
		defaultValue:  5000,
		overrideValue: 1_000_000_000,
		encoded:       []byte("1000000000"),
		invalid:       []byte("-1"),
		unsupported:   int64(1),
	})

	mock := memory.NewConfig(uint(42))
	assert.EqualValues(t, 42, NewUint64Config(mock, 0).Get(context.Background()))
}

func TestStringConfig(t *testing.T) {
	runWrapperTest(t, func(c config.Config) config.Value[string] {
		return NewStringConfig(c, "confirmed")
	}, wrapperTestCase[string]{
		defaultValue:  "confirmed",
		overrideValue: "finalized",
		encoded:       []byte("finalized"),
		unsupported:   1234,
	})
}

func TestDurationConfig(t *testing.T) {
	runWrapperTest(t, func(c config.Config) config.Value[time.Duration] {
		return NewDurationConfig(c, time.Minute)
	}, wrapperTestCase[time.Duration]{
		defaultValue:  time.Minute,
		overrideValue: 500 * time.Millisecond,
		encoded:       []byte("500ms"),
		invalid:       []byte("soon"),
		unsupported:   "500ms",
	})
}
