package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampLogLimit(t *testing.T) {
	assert.Equal(t, 10, clampLogLimit(0), "zero falls back to the default")
	assert.Equal(t, 10, clampLogLimit(-5))
	assert.Equal(t, 1, clampLogLimit(1))
	assert.Equal(t, maxSyncLogEntries, clampLogLimit(maxSyncLogEntries))
	// Oversized requests are clamped so the reply fits one Discord message.
	assert.Equal(t, maxSyncLogEntries, clampLogLimit(500))
}
