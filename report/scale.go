package report

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ============================================================================
// SCALES — Pure numeric mappings used by the region map
// ============================================================================

// MidIntensity is the intensity used when every count is equal.
const MidIntensity = 0.5

// Diverging scale endpoints, low → mid → high.
var (
	scaleLow  = mustHex("#2166AC")
	scaleMid  = mustHex("#F7F7F7")
	scaleHigh = mustHex("#B2182B")
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// MarkerRadius scales count linearly so that maxCount maps to maxRadius.
// Returns 0 when maxCount is not positive.
func MarkerRadius(count, maxCount int, maxRadius float64) float64 {
	if maxCount <= 0 || count <= 0 {
		return 0
	}
	return float64(count) / float64(maxCount) * maxRadius
}

// Intensity normalises count from [minCount, maxCount] onto [0, 1].
// When the range is empty every value maps to MidIntensity.
func Intensity(count, minCount, maxCount int) float64 {
	if maxCount <= minCount {
		return MidIntensity
	}
	t := float64(count-minCount) / float64(maxCount-minCount)
	return math.Max(0, math.Min(1, t))
}

// DivergingColor maps an intensity in [0, 1] onto the blue → white → red
// scale, blending in Lab space. Out-of-range input is clamped.
func DivergingColor(t float64) string {
	if math.IsNaN(t) {
		t = MidIntensity
	}
	t = math.Max(0, math.Min(1, t))
	var c colorful.Color
	if t < 0.5 {
		c = scaleLow.BlendLab(scaleMid, t*2)
	} else {
		c = scaleMid.BlendLab(scaleHigh, (t-0.5)*2)
	}
	return c.Clamped().Hex()
}
