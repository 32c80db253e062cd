package palette

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const curatedCount = 200

// Hand-picked presets lead the bank; the rest are generated in HCL space.
var named = [][]string{
	{"#000000", "#440000", "#ff2000", "#ffa000", "#ffff80", "#ffffff"},      // fire
	{"#000010", "#002050", "#0060a0", "#30c0e0", "#e0ffff"},                 // ocean
	{"#001a00", "#006020", "#40a030", "#c0e060", "#001a00"},                 // forest
	{"#1a0033", "#5c00a3", "#ff00cc", "#ff9966", "#1a0033"},                 // synthwave
	{"#000000", "#00ff66", "#00ccff", "#9900ff", "#000000"},                 // aurora
	{"#2b0f0e", "#a33a2b", "#f2b880", "#fff1d6", "#2b0f0e"},                 // terracotta
	{"#000000", "#ffffff"},                                                  // mono
	{"#ff0000", "#000000", "#0000ff", "#000000", "#ff0000"},                 // police
	{"#0b3866", "#50a3d9", "#ffffff", "#50a3d9", "#0b3866"},                 // ice
	{"#3d0066", "#ff5500", "#ffdd00", "#ff5500", "#3d0066"},                 // lava lamp
	{"#ff6b6b", "#feca57", "#48dbfb", "#1dd1a1", "#5f27cd", "#ff6b6b"},      // candy
	{"#000000", "#1b1b3a", "#693668", "#a74482", "#f84aa7", "#ff3562"},      // dusk
	{"#081c15", "#1b4332", "#40916c", "#95d5b2", "#d8f3dc", "#081c15"},      // mint
	{"#03071e", "#6a040f", "#d00000", "#e85d04", "#faa307", "#03071e"},      // ember
	{"#10002b", "#3c096c", "#7b2cbf", "#c77dff", "#e0aaff", "#10002b"},      // violet
	{"#f72585", "#7209b7", "#3a0ca3", "#4361ee", "#4cc9f0", "#f72585"},      // neon
}

var curated = buildCurated()

// CuratedCount is the number of presets in the bank.
func CuratedCount() int { return len(curated) }

// Curated returns a copy of preset i's control colors; i wraps.
func Curated(i int) []RGB {
	n := len(curated)
	i = ((i % n) + n) % n
	return append([]RGB(nil), curated[i]...)
}

func buildCurated() [][]RGB {
	out := make([][]RGB, 0, curatedCount)
	for _, hex := range named {
		colors, err := ParseHex(hex)
		if err != nil {
			panic(err)
		}
		out = append(out, colors)
	}

	// golden-angle hue walk so neighbouring presets look different
	const golden = 137.50776405
	for i := len(out); i < curatedCount; i++ {
		base := math.Mod(float64(i)*golden, 360)
		stops := 3 + i%4
		spread := 25.0 + float64(i%5)*20
		colors := make([]RGB, 0, stops+1)
		for k := 0; k < stops; k++ {
			h := math.Mod(base+float64(k)*spread, 360)
			l := 0.35 + 0.45*float64((k+i)%3)/2
			c := 0.45 + 0.25*float64(i%2)
			r, g, b := colorful.Hcl(h, c, l).Clamped().RGB255()
			colors = append(colors, RGB{r, g, b})
		}
		if i%3 != 0 {
			colors = append(colors, colors[0])
		}
		out = append(out, colors)
	}
	return out
}
