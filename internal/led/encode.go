package led

import (
	"math"

	"github.com/coreman2200/funtimes-aurora/internal/layout"
)

const (
	// Delimiter ends every frame on the wire. No pixel byte may equal it.
	Delimiter = 0xFF
	// MaxLevel is the largest channel value sent.
	MaxLevel = 0xFE
)

// GammaLUT builds out = round(255 * (in/255)^gamma) for every byte.
func GammaLUT(gamma float64) [256]byte {
	var lut [256]byte
	for i := range lut {
		lut[i] = byte(math.Round(255 * math.Pow(float64(i)/255, gamma)))
	}
	return lut
}

// Encoder turns a row-major RGB frame into the wire format: gamma
// corrected, reordered for the snake wiring, clamped to MaxLevel and
// terminated by Delimiter. It reuses its buffers and is not safe for
// concurrent use.
type Encoder struct {
	lut    [256]byte
	layout layout.Snake
	snake  []byte
	out    []byte
}

func NewEncoder(l layout.Snake, gamma float64) *Encoder {
	n := l.Count() * 3
	return &Encoder{
		lut:    GammaLUT(gamma),
		layout: l,
		snake:  make([]byte, n),
		out:    make([]byte, n+1),
	}
}

// Encode returns the wire bytes for frame. The result is valid until the
// next call.
func (e *Encoder) Encode(frame []byte) []byte {
	e.layout.Apply(e.snake, frame)
	n := len(e.snake)
	for i, v := range e.snake {
		v = e.lut[v]
		if v > MaxLevel {
			v = MaxLevel
		}
		e.out[i] = v
	}
	e.out[n] = Delimiter
	return e.out
}
