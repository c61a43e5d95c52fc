// Package export renders snapshots and series as standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/vsrbench/internal/dynamo"
)

var fills = map[dynamo.ObjectKind]string{
	dynamo.KindRobot:  "#00cc88",
	dynamo.KindWall:   "#666688",
	dynamo.KindGround: "none",
}

// SnapshotSVG draws every object of s. The view is the robot bounds plus 10%
// padding on each side, flipped so y grows upwards as in the world.
func SnapshotSVG(s dynamo.Snapshot, width, height int) string {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, obj := range s.Objects {
		if obj.Kind != dynamo.KindRobot {
			continue
		}
		for _, poly := range obj.Polygons {
			for _, p := range poly {
				minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
				minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
			}
		}
	}
	if math.IsInf(minX, 0) {
		return ""
	}
	minX, _, rangeX := pad(minX, maxX)
	minY, _, rangeY := pad(minY, maxY)
	scale := math.Min(float64(width)/rangeX, float64(height)/rangeY)

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, "<g transform=\"translate(0 %d) scale(%.4f %.4f) translate(%.4f %.4f)\" stroke=\"#00ff88\" stroke-width=\"%.4f\">\n",
		height, scale, -scale, -minX, -minY, 1.5/scale)

	for _, obj := range s.Objects {
		fill := fills[obj.Kind]
		if fill == "" {
			fill = "none"
		}
		for _, poly := range obj.Polygons {
			if len(poly) < 2 {
				continue
			}
			tag := "polygon"
			if obj.Kind == dynamo.KindGround {
				tag = "polyline"
			}
			fmt.Fprintf(&sb, "<%s fill=\"%s\" points=\"", tag, fill)
			for i, p := range poly {
				if i > 0 {
					sb.WriteByte(' ')
				}
				fmt.Fprintf(&sb, "%.4f,%.4f", p.X, p.Y)
			}
			sb.WriteString("\"/>\n")
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesSVG plots ys against xs as a single path.
func SeriesSVG(xs, ys []float64, width, height int, strokeColor string) string {
	n := min(len(xs), len(ys))
	if n < 2 {
		return ""
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 0; i < n; i++ {
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
	}
	minX, _, rangeX := pad(minX, maxX)
	minY, _, rangeY := pad(minY, maxY)

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"", strokeColor)
	for i := 0; i < n; i++ {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

// pad widens [lo, hi] by 10% on each side; an empty range becomes 1 wide.
func pad(lo, hi float64) (float64, float64, float64) {
	r := hi - lo
	if r == 0 {
		r = 1
	}
	lo -= r * 0.1
	hi += r * 0.1
	return lo, hi, hi - lo
}
