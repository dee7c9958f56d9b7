package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrSync, "transfer failed")
	assert.Equal(t, ErrSync, err.Code)
	assert.Equal(t, "[SYNC] transfer failed", err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Wrap(cause, ErrRemoteExec, "command failed")

	require.NotNil(t, err)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrSync, "ignored"))
	assert.Nil(t, Wrapf(nil, ErrSync, "ignored %d", 1))
}

func TestIsMatchesOnCode(t *testing.T) {
	inner := New(ErrConnectivity, "host unreachable")
	wrapped := fmt.Errorf("deploy aborted: %w", inner)

	assert.True(t, errors.Is(wrapped, New(ErrConnectivity, "")))
	assert.False(t, errors.Is(wrapped, New(ErrSync, "")))
}

func TestIsErrorCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", Newf(ErrConfigMissing, "no %s", "requirements.txt"))

	assert.True(t, IsErrorCode(err, ErrConfigMissing))
	assert.False(t, IsErrorCode(err, ErrStepFailed))
	assert.False(t, IsErrorCode(errors.New("plain"), ErrConfigMissing))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrStepFailed, GetErrorCode(New(ErrStepFailed, "boot config")))
	assert.Equal(t, ErrUnknown, GetErrorCode(errors.New("plain")))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrStepFailed, "step failed").WithDetail("step", "install-deps")
	assert.Equal(t, "install-deps", err.Details["step"])
}
