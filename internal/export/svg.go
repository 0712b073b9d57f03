package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/physics"
)

// Projection selects the two axes drawn by SnapshotSVG.
type Projection int

const (
	SideView Projection = iota // X right, Z up
	TopView                    // X right, Y up
)

func ParseProjection(name string) (Projection, error) {
	switch name {
	case "side", "xz":
		return SideView, nil
	case "top", "xy":
		return TopView, nil
	}
	return 0, fmt.Errorf("unknown projection: %s", name)
}

const (
	colorStatic = "#4488aa"
	colorBulk   = "#00ff88"
	colorFree   = "#ffcc00"
)

// SnapshotSVG draws every particle as a circle scaled to the domain. Static
// substrate, bulk and free particles get distinct fills.
func SnapshotSVG(w io.Writer, ps []*physics.Particle, space dynamo.Vector3, proj Projection, pxPerNm float64) error {
	if pxPerNm <= 0 {
		return fmt.Errorf("scale must be positive, got %g", pxPerNm)
	}
	vertical := space.Z
	if proj == TopView {
		vertical = space.Y
	}
	width := space.X * pxPerNm
	height := vertical * pxPerNm

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, p := range ps {
		u, v := p.Position.X, p.Position.Z
		if proj == TopView {
			v = p.Position.Y
		}
		fill := colorBulk
		switch {
		case p.Static:
			fill = colorStatic
		case p.Free:
			fill = colorFree
		}
		radius := p.Species.Lattice().Constant / 4 * pxPerNm
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, u*pxPerNm, height-v*pxPerNm, radius, fill))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// SeriesSVG draws y against x as a polyline fitted to width x height with a
// 10% margin.
func SeriesSVG(w io.Writer, xs, ys []float64, width, height int, strokeColor string) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("series length mismatch: %d x values, %d y values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return fmt.Errorf("series needs at least 2 points, got %d", len(xs))
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := range xs {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i := range xs {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString("\"/>\n</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
