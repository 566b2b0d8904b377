// Package env provides configs read once from environment variables.
package env

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/code-payments/echo-client/pkg/config"
	"github.com/code-payments/echo-client/pkg/config/wrapper"
)

// value is the content of an environment variable captured at construction.
type value string

// NewConfig captures the variable named by the upper cased key. An empty
// variable yields config.ErrNoValue.
func NewConfig(key string) config.Config {
	return value(os.Getenv(strings.ToUpper(key)))
}

func (v value) Get(_ context.Context) (interface{}, error) {
	if len(v) == 0 {
		return nil, config.ErrNoValue
	}
	return []byte(v), nil
}

func (value) Shutdown() {}

func NewUint64Config(key string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(key), defaultValue)
}

func NewStringConfig(key string, defaultValue string) config.String {
	return wrapper.NewStringConfig(NewConfig(key), defaultValue)
}

func NewBoolConfig(key string, defaultValue bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(key), defaultValue)
}

func NewDurationConfig(key string, defaultValue time.Duration) config.Duration {
	return wrapper.NewDurationConfig(NewConfig(key), defaultValue)
}
