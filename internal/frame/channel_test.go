package frame

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialReadIsBlack(t *testing.T) {
	c := NewChannel(4, 2)
	buf, seq := c.Read()
	assert.Zero(t, seq)
	assert.Equal(t, make([]byte, 24), buf)
}

func TestLatestWriteWins(t *testing.T) {
	c := NewChannel(2, 1)
	c.Write([]byte{5, 5, 5, 5, 5, 5}, 5)
	c.Write([]byte{6, 6, 6, 6, 6, 6}, 6)

	buf, seq := c.Read()
	assert.EqualValues(t, 6, seq)
	assert.Equal(t, []byte{6, 6, 6, 6, 6, 6}, buf)
}

func TestReadReturnsCopy(t *testing.T) {
	c := NewChannel(1, 1)
	c.Write([]byte{1, 2, 3}, 1)
	buf, _ := c.Read()
	buf[0] = 99

	again, _ := c.Read()
	assert.Equal(t, []byte{1, 2, 3}, again)
}

func TestWriteCopiesInput(t *testing.T) {
	c := NewChannel(1, 1)
	in := []byte{1, 2, 3}
	c.Write(in, 1)
	in[0] = 50
	buf, _ := c.Read()
	assert.EqualValues(t, 1, buf[0])
}

func TestWrongSizePanics(t *testing.T) {
	c := NewChannel(2, 2)
	assert.Panics(t, func() { c.Write([]byte{1}, 1) })
}

func TestConcurrentFramesAreNeverTorn(t *testing.T) {
	c := NewChannel(16, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		frame := make([]byte, c.Size())
		for i := 1; i <= 500; i++ {
			for j := range frame {
				frame[j] = byte(i)
			}
			c.Write(frame, uint64(i))
		}
	}()
	dst := make([]byte, c.Size())
	for i := 0; i < 500; i++ {
		seq := c.ReadInto(dst)
		for _, b := range dst {
			require.Equal(t, byte(seq), b)
		}
	}
	wg.Wait()
}
