package fake

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryIgnoresDelimiter(t *testing.T) {
	var buf bytes.Buffer
	d := &Driver{Out: &buf}
	require.NoError(t, d.Write([]byte{10, 20, 30, 30, 40, 50, 0xFF}))
	assert.Equal(t, "[frame 0001] avg=(20.0,30.0,40.0) first=(10,20,30)\n", buf.String())
}

func TestEvery(t *testing.T) {
	var buf bytes.Buffer
	d := &Driver{Out: &buf, Every: 2}
	for i := 0; i < 4; i++ {
		require.NoError(t, d.Write([]byte{1, 1, 1}))
	}
	assert.Equal(t, 4, d.Count)
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("\n")))
}
