package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/san-kum/chromsim/internal/forcefield"
	"github.com/san-kum/chromsim/internal/md"
)

// Snapshot is what StructureSVG draws: particle positions, their
// compartment weights, the nucleolar particles and the wall.
type Snapshot struct {
	Positions []md.Vec
	View      forcefield.ParticleView
	Nucleolar []int
	Semiaxes  md.Vec
}

const (
	colorA         = "#4fc3f7"
	colorB         = "#ff8a65"
	colorNucleolar = "#ffd54f"
	colorWall      = "#888888"
)

// StructureSVG projects a snapshot onto the x-y plane. Particles are
// colored by their dominant compartment and drawn back to front along z.
func StructureSVG(snap Snapshot, size int) string {
	extent := 1.1 * math.Max(snap.Semiaxes.X, snap.Semiaxes.Y)
	for _, p := range snap.Positions {
		extent = math.Max(extent, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	if !(extent > 0) {
		extent = 1
	}
	scale := float64(size) / (2 * extent)
	half := float64(size) / 2

	nucleolar := make(map[int]bool, len(snap.Nucleolar))
	for _, i := range snap.Nucleolar {
		nucleolar[i] = true
	}

	order := make([]int, len(snap.Positions))
	for i := range order {
		order[i] = i
	}
	sortByZ(order, snap.Positions)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<ellipse cx="%.1f" cy="%.1f" rx="%.1f" ry="%.1f" fill="none" stroke="%s" stroke-dasharray="4 3"/>
<g stroke="#0a0a0a" stroke-width="0.5">
`, size, size, size, size, half, half, snap.Semiaxes.X*scale, snap.Semiaxes.Y*scale, colorWall))

	radius := math.Max(scale*0.35, 1)
	for _, i := range order {
		p := snap.Positions[i]
		cx := half + p.X*scale
		cy := half - p.Y*scale

		fill := colorA
		switch {
		case nucleolar[i]:
			fill = colorNucleolar
		case snap.View != nil && i < snap.View.Len() && snap.View.At(i).B > snap.View.At(i).A:
			fill = colorB
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, radius, fill))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func sortByZ(order []int, pos []md.Vec) {
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && pos[order[j]].Z < pos[order[j-1]].Z; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
}

// SeriesSVG draws a single series, e.g. the packing reaction, as a line
// against its sample index.
func SeriesSVG(data []float64, width, height int, strokeColor string) string {
	if len(data) < 2 {
		return ""
	}

	minY, maxY := data[0], data[0]
	for _, v := range data {
		minY = math.Min(minY, v)
		maxY = math.Max(maxY, v)
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := float64(len(data) - 1)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, v := range data {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// WriteFile writes svg to path, or to w when path is "-".
func WriteFile(path string, svg string, w io.Writer) error {
	if path == "-" {
		_, err := io.WriteString(w, svg)
		return err
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
