package tui

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/san-kum/chromsim/internal/sim"
)

const (
	width       = 70
	height      = 16
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer redraws a reaction trace on a plain terminal while a run
// progresses. It implements sim.Observer.
type LiveRenderer struct {
	label     string
	frameRate int
	lastFrame time.Time
	out       io.Writer
	canvas    [][]rune
	history   []float64
}

func NewLiveRenderer(label string, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return &LiveRenderer{
		label:     label,
		frameRate: frameRate,
		out:       os.Stdout,
		canvas:    canvas,
		history:   make([]float64, 0, width),
	}
}

// SetOutput redirects frames, mainly for tests.
func (r *LiveRenderer) SetOutput(w io.Writer) { r.out = w }

func (r *LiveRenderer) OnSample(s sim.Sample) {
	r.history = appendBounded(r.history, s.PackingReaction, width)

	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	r.clear()
	r.drawTrace()
	r.render(s)
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) line(x1, y1, x2, y2 int, c rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	e := dx - dy
	for {
		r.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * e
		if e2 > -dy {
			e -= dy
			x1 += sx
		}
		if e2 < dx {
			e += dx
			y1 += sy
		}
	}
}

// drawTrace plots the reaction history with zero marked as a dotted
// baseline when it falls inside the range.
func (r *LiveRenderer) drawTrace() {
	if len(r.history) == 0 {
		return
	}
	lo, hi := r.history[0], r.history[0]
	for _, v := range r.history {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		hi, lo = hi+1, lo-1
	}
	row := func(v float64) int {
		return int(math.Round(float64(height-1) * (hi - v) / (hi - lo)))
	}

	if lo < 0 && hi > 0 {
		y0 := row(0)
		for x := 0; x < width; x += 2 {
			r.set(x, y0, '·')
		}
	}

	prevX, prevY := 0, row(r.history[0])
	for i, v := range r.history {
		x, y := i, row(v)
		if i > 0 {
			r.line(prevX, prevY, x, y, '*')
		}
		prevX, prevY = x, y
	}
	r.set(prevX, prevY, '@')
}

func (r *LiveRenderer) render(s sim.Sample) {
	var b strings.Builder
	b.WriteString(clearScreen)
	stage := s.Stage
	if stage == "" {
		stage = "hold"
	}
	b.WriteString(fmt.Sprintf("  %s  step=%d  stage=%s\n", r.label, s.Step, stage))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	b.WriteString(fmt.Sprintf("  reaction=%.3f  energy=%.3f  wall=×%.3f  axes=(%.2f, %.2f, %.2f)\n",
		s.PackingReaction, s.Energy, s.WallScale, s.Semiaxes.X, s.Semiaxes.Y, s.Semiaxes.Z))

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
