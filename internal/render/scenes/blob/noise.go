package blob

import (
	"math"
	"math/rand/v2"
)

const (
	yWrapB = 4
	yWrap  = 1 << yWrapB
	zWrapB = 8
	zWrap  = 1 << zWrapB
	size   = 4095

	cosSteps = 720
	cosPi    = cosSteps / 2
)

// cosine half-period table shared by every generator
var cosTable = func() [cosSteps]float64 {
	var t [cosSteps]float64
	for i := range t {
		t[i] = math.Cos(float64(i) * math.Pi / cosPi)
	}
	return t
}()

// Noise is value noise in the style of Processing's noise(): a random
// lattice of size+1 values blended with a cosine ease, summed over octaves.
type Noise struct {
	perlin [size + 1]float64
}

func NewNoise(rng *rand.Rand) *Noise {
	n := &Noise{}
	for i := range n.perlin {
		n.perlin[i] = rng.Float64()
	}
	return n
}

func fsc(f float64) float64 {
	idx := int(f*cosPi) % cosSteps
	return 0.5 * (1 - cosTable[idx])
}

// At samples the noise field. Each octave doubles the frequency and scales
// the amplitude by falloff, starting at 0.5.
func (n *Noise) At(x, y, z float64, octaves int, falloff float64) float64 {
	x, y, z = math.Abs(x), math.Abs(y), math.Abs(z)
	xi, yi, zi := int(x), int(y), int(z)
	xf, yf, zf := x-float64(xi), y-float64(yi), z-float64(zi)

	r := 0.0
	ampl := 0.5
	for o := 0; o < octaves; o++ {
		of := xi + yi<<yWrapB + zi<<zWrapB

		rxf := fsc(xf)
		ryf := fsc(yf)

		n1 := n.perlin[of&size]
		n1 += rxf * (n.perlin[(of+1)&size] - n1)
		n2 := n.perlin[(of+yWrap)&size]
		n2 += rxf * (n.perlin[(of+yWrap+1)&size] - n2)
		n1 += ryf * (n2 - n1)

		of += zWrap
		n2 = n.perlin[of&size]
		n2 += rxf * (n.perlin[(of+1)&size] - n2)
		n3 := n.perlin[(of+yWrap)&size]
		n3 += rxf * (n.perlin[(of+yWrap+1)&size] - n3)
		n2 += ryf * (n3 - n2)

		n1 += fsc(zf) * (n2 - n1)

		r += n1 * ampl
		ampl *= falloff

		xi <<= 1
		xf *= 2
		yi <<= 1
		yf *= 2
		zi <<= 1
		zf *= 2
		if xf >= 1 {
			xi++
			xf--
		}
		if yf >= 1 {
			yi++
			yf--
		}
		if zf >= 1 {
			zi++
			zf--
		}
	}
	return r
}
