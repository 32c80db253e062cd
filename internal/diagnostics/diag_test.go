package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubKeepsRecent(t *testing.T) {
	h := NewHub(2)
	h.Push(Diagnostic{Code: "A"})
	h.Push(Diagnostic{Code: "B"})
	h.Push(Diagnostic{Code: "C"})
	got := h.Recent()
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Code)
	assert.Equal(t, "C", got[1].Code)
	assert.False(t, got[1].Time.IsZero())
}

func TestHubFanOut(t *testing.T) {
	h := NewHub(0)
	c, cancel := h.Subscribe()
	h.Push(Diagnostic{Severity: Warn, Code: "X"})
	d := <-c
	assert.Equal(t, "X", d.Code)

	cancel()
	_, open := <-c
	assert.False(t, open)
	h.Push(Diagnostic{Code: "Y"}) // no subscribers left
	cancel()
}
