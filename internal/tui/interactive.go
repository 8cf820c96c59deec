package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/chromsim/internal/config"
	"github.com/san-kum/chromsim/internal/experiment"
	"github.com/san-kum/chromsim/internal/forcefield"
	"github.com/san-kum/chromsim/internal/sim"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var groupInfo = map[string]string{
	"static":     "fixed scales",
	"compaction": "staged wall compaction",
	"nucleolus":  "droplet condensation",
}

type state int

const (
	stateMenu state = iota
	stateSim
)

type entry struct {
	group, name string
}

func (e entry) String() string { return e.group + "/" + e.name }

type model struct {
	state   state
	cursor  int
	entries []entry
	current entry

	cfg       *config.Config
	exp       *experiment.Experiment
	simCfg    sim.Config
	seed      int64
	step      int
	last      sim.Sample
	err       error
	running   bool
	paused    bool
	speed     float64
	reactions []float64
	energies  []float64
	lastFrame time.Time
	fps       float64

	width  int
	height int
}

func NewInteractiveApp(seed int64) *model {
	m := &model{
		state:     stateMenu,
		seed:      seed,
		speed:     1.0,
		reactions: make([]float64, 0, 120),
		energies:  make([]float64, 0, 120),
		width:     80,
		height:    24,
	}
	for _, g := range config.ListGroups() {
		for _, name := range config.ListPresets(g) {
			m.entries = append(m.entries, entry{group: g, name: name})
		}
	}
	return m
}

// NewMonitor skips the menu and starts cfg directly.
func NewMonitor(cfg *config.Config, label string, seed int64) *model {
	m := NewInteractiveApp(seed)
	m.current = entry{group: "custom", name: label}
	m.cfg = cfg
	m.state = stateSim
	m.start()
	return m
}

func (m model) Init() tea.Cmd {
	if m.state == stateSim {
		return tick()
	}
	return nil
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.state != stateSim {
			return m, nil
		}
		if m.running && !m.paused && m.exp != nil {
			now := time.Now()
			if !m.lastFrame.IsZero() {
				dt := now.Sub(m.lastFrame).Seconds()
				if dt > 0 {
					m.fps = 1.0 / dt
				}
			}
			m.lastFrame = now
			steps := int(m.speed)
			if steps < 1 {
				steps = 1
			}
			for i := 0; i < steps && m.running; i++ {
				m.advance()
			}
		}
		if m.running && m.state == stateSim {
			return m, tick()
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateSim:
		return m.simKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.current = m.entries[m.cursor]
		m.cfg = config.GetPreset(m.current.group, m.current.name)
		m.state = stateSim
		m.start()
		return m, tea.Batch(tea.ClearScreen, tick())
	}
	return m, nil
}

func (m model) simKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.running = false
		m.state = stateMenu
		m.reset()
		return m, tea.ClearScreen
	case " ", "p":
		m.paused = !m.paused
	case "r":
		m.start()
		return m, tea.Batch(tea.ClearScreen, tick())
	case "w":
		if m.exp != nil {
			m.simCfg.AdaptWall = !m.simCfg.AdaptWall && m.exp.GetSimulator().WallController() != nil
		}
	case "t", "T":
		if m.exp == nil {
			break
		}
		if wall := m.exp.GetSimulator().WallController(); wall != nil {
			delta := 0.1 * math.Max(math.Abs(wall.Target), 1)
			if msg.String() == "T" {
				delta = -delta
			}
			wall.SetParam("Target", wall.Target+delta)
		}
	case "+", "=":
		m.speed = math.Min(m.speed*2, 16)
	case "-", "_":
		m.speed = math.Max(m.speed/2, 0.25)
	case "0":
		m.speed = 1.0
	}
	return m, nil
}

func (m *model) start() {
	m.reset()

	// Always attach a controller so adaptation can be toggled with 'w'.
	cfg := *m.cfg
	cfg.Run.AdaptWall = true
	m.exp = experiment.New(&cfg)
	if err := m.exp.Setup(m.seed, experiment.NewRegistry().DefaultMetrics()); err != nil {
		m.err = err
		m.exp = nil
		return
	}
	m.simCfg = cfg.SimConfig()
	m.simCfg.AdaptWall = m.cfg.Run.AdaptWall
	m.running = true
	m.advance()
}

func (m *model) reset() {
	m.exp = nil
	m.err = nil
	m.step = 0
	m.last = sim.Sample{}
	m.paused = false
	m.reactions = m.reactions[:0]
	m.energies = m.energies[:0]
	m.lastFrame = time.Time{}
}

func (m *model) advance() {
	if m.step > m.simCfg.Steps {
		m.running = false
		return
	}
	sample, err := m.exp.GetSimulator().Step(m.step, m.simCfg)
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.last = sample
	m.step++

	m.reactions = appendBounded(m.reactions, sample.PackingReaction, 120)
	m.energies = appendBounded(m.energies, sample.Energy, 120)
}

func appendBounded(s []float64, v float64, n int) []float64 {
	s = append(s, v)
	if len(s) > n {
		s = s[1:]
	}
	return s
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateSim:
		return m.viewSim()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("            " + cyan.Render("c h r o m s i m") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, e := range m.entries {
		desc := groupInfo[e.group]
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-24s", e)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-24s", e)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter start   q quit") + "\n")

	return b.String()
}

func (m model) viewSim() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString(fmt.Sprintf("\n   %s %s\n", red.Render("✗"), cyan.Render(m.current.String())))
		b.WriteString("   " + red.Render(m.err.Error()) + "\n")
		b.WriteString("\n" + dim.Render("   r retry  q back") + "\n")
		return b.String()
	}

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	switch {
	case !m.running:
		statusIcon = dim.Render("■")
		statusText = dim.Render("done")
	case m.paused:
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	stage := m.last.Stage
	if stage == "" {
		stage = "hold"
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s\n",
		statusIcon, cyan.Render(m.current.String()), statusText, magenta.Render(stage)))

	total := max(m.simCfg.Steps, 1)
	progress := math.Min(float64(m.last.Step)/float64(total), 1)
	barWidth := 36
	filled := int(progress * float64(barWidth))
	stepStr := fmt.Sprintf("%d/%d", m.last.Step, total)
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s  %s\n\n", bar, dim.Render(stepStr), dim.Render(fmt.Sprintf("%.0ffps", m.fps))))

	cw := max(m.width-6, 40)
	ch := max(m.height-14, 10)
	for _, row := range m.crossSection(cw, ch) {
		b.WriteString("   " + string(row) + "\n")
	}

	wallStr := dim.Render("wall fixed")
	if wall := m.exp.GetSimulator().WallController(); wall != nil && m.simCfg.AdaptWall {
		wallStr = yellow.Render(fmt.Sprintf("wall ×%.3f → %.1f", m.last.WallScale, wall.Target))
	}
	b.WriteString(fmt.Sprintf("\n   %s%s  %s%s  %s%s  %s\n",
		dim.Render("core="), white.Render(fmt.Sprintf("%.2f", m.last.CoreScale)),
		dim.Render("bond="), white.Render(fmt.Sprintf("%.2f", m.last.BondScale)),
		dim.Render("axes="), white.Render(fmt.Sprintf("%.1f %.1f %.1f", m.last.Semiaxes.X, m.last.Semiaxes.Y, m.last.Semiaxes.Z)),
		wallStr))

	if len(m.reactions) > 1 {
		b.WriteString(fmt.Sprintf("   %s %s %s\n", dim.Render("reaction"), cyan.Render(sparkline(m.reactions, 32)),
			white.Render(fmt.Sprintf("%.2f", m.last.PackingReaction))))
		b.WriteString(fmt.Sprintf("   %s   %s %s\n", dim.Render("energy"), green.Render(sparkline(m.energies, 32)),
			white.Render(fmt.Sprintf("%.2f", m.last.Energy))))
	}

	b.WriteString("\n" + dim.Render("   space pause  ±speed  w wall  t/T target  r restart  q back") + "\n")

	return b.String()
}

// crossSection projects particles onto the x-y plane inside the current
// wall outline. A particles are drawn as 'a', B as 'b', nucleolar ones as
// '@'.
func (m model) crossSection(w, h int) [][]rune {
	canvas := make([][]rune, h)
	for i := range canvas {
		canvas[i] = make([]rune, w)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}
	if m.exp == nil {
		return canvas
	}

	axes := m.last.Semiaxes
	extent := 1.2 * math.Max(axes.X, axes.Y)
	if !(extent > 0) {
		return canvas
	}
	// Terminal cells are about twice as tall as wide.
	sx := float64(w-1) / (2 * extent)
	sy := float64(h-1) / (2 * extent)
	if sx/2 < sy {
		sy = sx / 2
	} else {
		sx = sy * 2
	}
	cx, cy := float64(w-1)/2, float64(h-1)/2
	plot := func(x, y float64, c rune) {
		col := int(math.Round(cx + x*sx))
		row := int(math.Round(cy - y*sy))
		if col >= 0 && col < w && row >= 0 && row < h {
			canvas[row][col] = c
		}
	}

	for k := 0; k < 96; k++ {
		th := 2 * math.Pi * float64(k) / 96
		plot(axes.X*math.Cos(th), axes.Y*math.Sin(th), '·')
	}

	view := m.cfg.View()
	nucleolar := make(map[int]bool)
	for _, i := range m.exp.Forcefields().NucleolarParticles() {
		nucleolar[i] = true
	}
	for _, b := range m.cfg.Design.NucleolarBonds {
		nucleolar[b.Nucleolus] = true
	}
	for i, p := range m.exp.System().Positions() {
		plot(p.X, p.Y, particleGlyph(view, i, nucleolar[i]))
	}
	return canvas
}

func particleGlyph(view forcefield.ParticleView, i int, nucleolar bool) rune {
	if nucleolar {
		return '@'
	}
	if i < view.Len() && view.At(i).B > view.At(i).A {
		return 'b'
	}
	return 'a'
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		v := data[i*step]
		idx := int((v - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

func RunInteractive(seed int64) error {
	p := tea.NewProgram(NewInteractiveApp(seed), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RunMonitor shows a live view of one configured run.
func RunMonitor(cfg *config.Config, label string, seed int64) error {
	p := tea.NewProgram(NewMonitor(cfg, label, seed), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
