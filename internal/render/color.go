package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
)

// ParseColor reads an "r, g, b" triplet of 0-255 channels, or a #hex
// color, and applies alpha.
func ParseColor(s string, alpha float64) (gg.RGBA, error) {
	alpha = math.Max(0, math.Min(1, alpha))
	s = strings.TrimSpace(s)
	if s == "" {
		return gg.RGBA2(0, 0, 0, alpha), nil
	}
	if strings.HasPrefix(s, "#") {
		c := gg.Hex(s)
		c.A = alpha
		return c, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return gg.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	var channels [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return gg.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		channels[i] = math.Max(0, math.Min(255, v)) / 255
	}
	return gg.RGBA2(channels[0], channels[1], channels[2], alpha), nil
}
