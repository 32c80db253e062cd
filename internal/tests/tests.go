// Package tests generates wiring check patterns for a snake matrix. They
// are fed to the manager as paint frames, one Step per render tick.
package tests

import (
	"fmt"

	"github.com/coreman2200/funtimes-aurora/internal/layout"
)

type Kind string

const (
	None       Kind = ""
	IndexSweep Kind = "index_sweep"  // one white LED walking in wire order
	RGBTest    Kind = "rgb_channels" // whole matrix red, then green, then blue
	RowSweep   Kind = "row_sweep"    // one cyan row at a time, top to bottom
)

// Kinds lists the known plans.
var Kinds = []Kind{IndexSweep, RGBTest, RowSweep}

type Plan struct {
	Kind Kind
	// Hold is how many frames each step stays up.
	Hold int
}

type Runner struct {
	plan  Plan
	step  int
	frame int
}

func NewRunner(plan Plan) (*Runner, error) {
	switch plan.Kind {
	case IndexSweep, RGBTest, RowSweep:
	default:
		return nil, fmt.Errorf("unknown test %q", plan.Kind)
	}
	if plan.Hold <= 0 {
		plan.Hold = 1
	}
	return &Runner{plan: plan}, nil
}

func (r *Runner) Kind() Kind { return r.plan.Kind }

// Step fills rgb (row-major, l.Count()*3 bytes); returns false when complete.
func (r *Runner) Step(l layout.Snake, rgb []byte) bool {
	clear(rgb)
	switch r.plan.Kind {
	case IndexSweep:
		if r.step >= l.Count() {
			return false
		}
		y := r.step / l.Width
		x := r.step % l.Width
		if l.Reversed(y) {
			x = l.Width - 1 - x
		}
		i := (y*l.Width + x) * 3
		rgb[i], rgb[i+1], rgb[i+2] = 255, 255, 255
	case RGBTest:
		if r.step >= 3 {
			return false
		}
		for i := r.step; i < len(rgb); i += 3 {
			rgb[i] = 255
		}
	case RowSweep:
		if r.step >= l.Height {
			return false
		}
		row := l.Width * 3
		for i := r.step * row; i < (r.step+1)*row; i += 3 {
			rgb[i+1], rgb[i+2] = 255, 255
		}
	default:
		return false
	}
	r.frame++
	if r.frame >= r.plan.Hold {
		r.frame = 0
		r.step++
	}
	return true
}
