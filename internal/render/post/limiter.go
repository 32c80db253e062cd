// Package post holds optional frame stages applied by the producer after
// palette mapping and before the frame channel.
package post

// Limiter is a two-stage power limiter for RGB byte frames:
//  1. per-LED white cap: scales (R,G,B) so R+G+B <= WhiteCap*255
//  2. global current budget: estimates current and scales the whole frame
//     to stay under BudgetMA, softly from Knee*BudgetMA upward.
//
// The zero value does nothing.
type Limiter struct {
	WhiteCap  float64 // sum-of-channels cap in [0,3]; 0 or >=3 disables
	ChannelMA float64 // mA per channel at full scale; WS2812 ≈ 20
	BudgetMA  float64 // 0 disables the global stage
	Knee      float64 // fraction of budget where soft limiting begins
}

// Enabled reports whether Apply can change a frame.
func (l Limiter) Enabled() bool {
	return (l.WhiteCap > 0 && l.WhiteCap < 3) || l.BudgetMA > 0
}

// EstimateMA is the current the frame would draw.
func (l Limiter) EstimateMA(rgb []byte) float64 {
	cm := l.ChannelMA
	if cm <= 0 {
		cm = 20
	}
	var sum float64
	for _, v := range rgb {
		sum += float64(v)
	}
	return sum / 255 * cm
}

// Apply limits rgb in place.
func (l Limiter) Apply(rgb []byte) {
	if l.WhiteCap > 0 && l.WhiteCap < 3 {
		limit := l.WhiteCap * 255
		for i := 0; i+2 < len(rgb); i += 3 {
			s := float64(rgb[i]) + float64(rgb[i+1]) + float64(rgb[i+2])
			if s > limit {
				scale(rgb[i:i+3], limit/s)
			}
		}
	}

	if l.BudgetMA <= 0 {
		return
	}
	total := l.EstimateMA(rgb)
	if total <= 0 {
		return
	}
	knee := l.Knee
	if knee <= 0 || knee >= 1 {
		knee = 0.9
	}
	ratio := total / l.BudgetMA
	minS := l.BudgetMA / total
	switch {
	case ratio <= knee:
		return
	case ratio <= 1:
		// map ratio in [knee,1] to scale in [1, budget/total]
		t := (ratio - knee) / (1 - knee)
		scale(rgb, 1-t*(1-minS))
	default:
		scale(rgb, minS)
	}
}

func scale(px []byte, s float64) {
	if s >= 1 {
		return
	}
	for i, v := range px {
		px[i] = byte(float64(v) * s)
	}
}
