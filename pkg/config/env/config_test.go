package env

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/code-payments/echo-client/pkg/config"
)

func TestConfigDoesntExist(t *testing.T) {
	const env = "ENV_CONFIG_TEST_VAR"
	os.Setenv(env, "default")

	v, err := NewConfig(env).Get(context.Background())
	assert.Equal(t, []byte("default"), v)
	assert.Nil(t, err)

	os.Unsetenv(env)

	v, err = NewConfig(env).Get(context.Background())
	assert.Nil(t, v)
	assert.Equal(t, config.ErrNoValue, err)
}

func TestTypedConfigs(t *testing.T) {
	const (
		uintEnv     = "ENV_CONFIG_TEST_UINT"
		durationEnv = "ENV_CONFIG_TEST_DURATION"
	)
	defer os.Unsetenv(uintEnv)
	defer os.Unsetenv(durationEnv)

	assert.EqualValues(t, 32, NewUint64Config(uintEnv, 32).Get(context.Background()))
	assert.Equal(t, time.Minute, NewDurationConfig(durationEnv, time.Minute).Get(context.Background()))

	os.Setenv(uintEnv, "2187")
	os.Setenv(durationEnv, "500ms")
	assert.EqualValues(t, 2187, NewUint64Config(uintEnv, 32).Get(context.Background()))
	assert.Equal(t, 500*time.Millisecond, NewDurationConfig(durationEnv, time.Minute).Get(context.Background()))

	// Unparseable values fall back to the default.
	os.Setenv(uintEnv, "lots")
	v, err := NewUint64Config(uintEnv, 32).GetSafe(context.Background())
	assert.Error(t, err)
	assert.EqualValues(t, 32, v)
}
