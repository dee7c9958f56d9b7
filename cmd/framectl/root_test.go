package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arthur-debert/framectl/pkg/errors"
)

func TestExitCodePerFailureClass(t *testing.T) {
	tests := []struct {
		code errors.ErrorCode
		want int
	}{
		{errors.ErrConnectivity, 2},
		{errors.ErrSync, 3},
		{errors.ErrConfigMissing, 4},
		{errors.ErrConfigLoad, 4},
		{errors.ErrRemoteExec, 5},
		{errors.ErrStepFailed, 5},
		{errors.ErrServiceQuery, 6},
		{errors.ErrServiceAction, 6},
		{errors.ErrInvalidInput, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(errors.New(tt.code, "boom")))
		})
	}
}

func TestExitCodeSurvivesWrapping(t *testing.T) {
	inner := errors.New(errors.ErrSync, "rsync exited 23")
	wrapped := fmt.Errorf("deploy: %w", inner)
	assert.Equal(t, 3, exitCode(wrapped))
}

func TestFailureMessageDistinguishesStages(t *testing.T) {
	assert.Contains(t, failureMessage(errors.New(errors.ErrConnectivity, "no route")), "unreachable")
	assert.Contains(t, failureMessage(errors.New(errors.ErrSync, "exit 12")), "sync failed")
	assert.Contains(t, failureMessage(errors.New(errors.ErrConfigMissing, "requirements.txt")), "configuration")
	assert.Contains(t, failureMessage(errors.New(errors.ErrStepFailed, "apt broke")), "provisioning failed")
	assert.Contains(t, failureMessage(fmt.Errorf("plain error")), "plain error")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"deploy", "provision", "status", "service", "version"} {
		assert.True(t, names[want], "missing %s command", want)
	}
}
