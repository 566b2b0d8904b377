// Package wrapper adapts an untyped config.Config into typed config.Value
// implementations with a default value.
package wrapper

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/code-payments/echo-client/pkg/config"
)

// ErrUnsuportedConversion indicates the wrapper does not implement conversion from the source type
var ErrUnsuportedConversion = errors.New("config: wrapper conversion from source type not implemented")

// converter turns a raw config.Config value into T.
type converter[T any] func(raw interface{}) (T, error)

// parsed accepts either a T or its encoded []byte form.
func parsed[T any](parse func(string) (T, error)) converter[T] {
	return func(raw interface{}) (T, error) {
		switch v := raw.(type) {
		case T:
			return v, nil
		case []byte:
			return parse(string(v))
		default:
			var zero T
			return zero, ErrUnsuportedConversion
		}
	}
}

type valueConfig[T any] struct {
	source       config.Config
	defaultValue T
	convert      converter[T]

	mu        sync.RWMutex
	lastValue T
}

func newValueConfig[T any](source config.Config, defaultValue T, convert converter[T]) *valueConfig[T] {
	return &valueConfig[T]{
		source:       source,
		defaultValue: defaultValue,
		convert:      convert,
		lastValue:    defaultValue,
	}
}

// GetSafe returns the source value, or the default when none is set. On
// error the last successfully read value is returned alongside it.
func (c *valueConfig[T]) GetSafe(ctx context.Context) (T, error) {
	raw, err := c.source.Get(ctx)

	var value T
	switch {
	case err == config.ErrNoValue:
		value = c.defaultValue
	case err != nil:
		return c.last(), err
	default:
		if value, err = c.convert(raw); err != nil {
			return c.last(), err
		}
	}

	c.mu.Lock()
	c.lastValue = value
	c.mu.Unlock()
	return value, nil
}

func (c *valueConfig[T]) last() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastValue
}

func (c *valueConfig[T]) Get(ctx context.Context) T {
	val, _ := c.GetSafe(ctx)
	return val
}

func (c *valueConfig[T]) Shutdown() {
	c.source.Shutdown()
}

func NewBoolConfig(source config.Config, defaultValue bool) config.Bool {
	return newValueConfig(source, defaultValue, parsed(strconv.ParseBool))
}

// NewUint64Config also accepts uint values.
func NewUint64Config(source config.Config, defaultValue uint64) config.Uint64 {
	convert := parsed(func(s string) (uint64, error) {
		return strconv.ParseUint(s, 10, 64)
	})
	return newValueConfig(source, defaultValue, func(raw interface{}) (uint64, error) {
		if v, ok := raw.(uint); ok {
			return uint64(v), nil
		}
		return convert(raw)
	})
}

func NewStringConfig(source config.Config, defaultValue string) config.String {
	return newValueConfig(source, defaultValue, parsed(func(s string) (string, error) {
		return s, nil
	}))
}

func NewDurationConfig(source config.Config, defaultValue time.Duration) config.Duration {
	return newValueConfig(source, defaultValue, parsed(time.ParseDuration))
}
