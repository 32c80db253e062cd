// Package layout maps logical matrix coordinates onto the wiring order of
// a serpentine ("snake") LED matrix.
package layout

// Snake describes a matrix wired row after row, with every other row
// running backwards. When LeftToRight is set the first row runs left to
// right and the odd rows are reversed; otherwise the even rows are.
type Snake struct {
	Width, Height int
	LeftToRight   bool
}

// Reversed reports whether row y runs right to left on the wire.
func (s Snake) Reversed(y int) bool {
	if s.LeftToRight {
		return y%2 == 1
	}
	return y%2 == 0
}

// Index maps x,y -> linear LED index (0..N-1)
func (s Snake) Index(x, y int) int {
	if s.Reversed(y) {
		x = s.Width - 1 - x
	}
	return y*s.Width + x
}

func (s Snake) Count() int { return s.Width * s.Height }

// Apply reorders the row-major RGB frame src into wiring order in dst.
// Both must hold Count()*3 bytes.
func (s Snake) Apply(dst, src []byte) {
	row := s.Width * 3
	for y := 0; y < s.Height; y++ {
		in := src[y*row : (y+1)*row]
		out := dst[y*row : (y+1)*row]
		if !s.Reversed(y) {
			copy(out, in)
			continue
		}
		for x := 0; x < s.Width; x++ {
			j := (s.Width - 1 - x) * 3
			out[j], out[j+1], out[j+2] = in[x*3], in[x*3+1], in[x*3+2]
		}
	}
}
