package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SafeBeforeInit(t *testing.T) {
	l := New()
	require.NotNil(t, l.Log)
	// must not panic
	l.Log.Info("hello")
}

func TestInit(t *testing.T) {
	l := New()
	require.NoError(t, l.Init("Info"))
	assert.NotNil(t, l.Log)
}

func TestInit_BadLevel(t *testing.T) {
	l := New()
	err := l.Init("loud")
	assert.Error(t, err)
}
